// Package render defines the seams between the editor and its front-ends:
// renderer interfaces, per-request options, page view models, wire patches,
// and the helpers shared by every renderer (hidden chrome fields, error
// mapping, localisation).
package render
