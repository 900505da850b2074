// Package document models view definition configuration documents.
//
// Lists inside a document are sparse: removing an entry leaves a hole so the
// indices baked into field paths stay valid for the rest of the editing
// session. Compact drops the holes and is run once, right before a document is
// serialised for the configuration service.
//
//	doc, _ := document.Unmarshal(raw)
//	_ = doc.Remove(document.ColumnPath(0, 1))
//	payload, _ := document.Marshal(doc) // compacted
package document
