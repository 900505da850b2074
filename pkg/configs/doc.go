// Package configs is the page controller of the configuration UI. It fetches
// configurations through a Service, records them in the recently viewed
// history, picks a form generator by configuration type (falling back to the
// generic JSON/XML view) and keeps the toolbar and page messages in step.
//
// The controller produces render.Page view models; rendering and transport
// are left to the caller.
package configs
