// Package editor builds the interactive editing surface for a view definition
// document.
//
// Build walks the document and produces a tree of blocks in a fixed order:
// identity, result model definition, execution parameters, one tab per
// calculation set, and one sub-tree per calculation set. Only the first set's
// sub-tree is visible.
//
// Every interaction edits the document in place and returns the DOM patches
// that bring a rendered page up to date. Removing an item turns its slot into
// a hole instead of shifting its siblings, so the field names already on the
// page stay valid. Holes are compacted away by Submit:
//
//	form, _ := editor.Build(doc)
//	patches, _ := form.Dispatch(editor.Event{Block: id, Action: editor.ActionRemoveColumn})
//	sub, _ := form.Submit(ctx, posted)
//	_ = sub.JSON
package editor
