// Package template defines renderer-agnostic template interfaces and adapters.
// It mirrors the go-template engine contract so renderers can swap engines.
// Renderers depend only on the interfaces declared here.
package template
