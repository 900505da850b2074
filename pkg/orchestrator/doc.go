// Package orchestrator wires the loader → transformer → validator → editor →
// renderer pipeline behind a single entry point for the CLI and the root
// package helpers.
package orchestrator
