package components

import "github.com/goliatone/go-viewdef/pkg/editor"

// Canonical component names, one per editor field kind.
const (
	NameText       = string(editor.FieldText)
	NameNumber     = string(editor.FieldNumber)
	NameSelect     = string(editor.FieldSelect)
	NameLookup     = string(editor.FieldLookup)
	NameProperties = string(editor.FieldProperties)
)
