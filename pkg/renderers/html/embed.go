package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/blocks/*.tpl templates/components/*.tpl templates/partials/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// Asset file names, matching the keys of the default theme manifest.
const (
	StylesheetName    = "editor.css"
	RuntimeScriptName = "editor.js"
)

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded CSS and runtime script so callers can serve
// them over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
