package render

import (
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/history"
	"github.com/goliatone/go-viewdef/pkg/message"
)

// PageKind selects the page layout.
type PageKind string

const (
	PageDefault PageKind = "default"
	PageEditor  PageKind = "editor"
	PageGeneric PageKind = "generic"
)

// Body formats of the generic configuration view.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Page is the view model of one configuration UI page.
type Page struct {
	Kind  PageKind
	Title string
	// ConfigID is the configuration shown, empty on the landing page.
	ConfigID string
	// Toolbar is markup produced by the toolbar widget.
	Toolbar  string
	Messages []message.View
	Dialog   *message.Dialog
	History  []history.Entry
	Listing  Listing
	Form     *editor.Form
	Generic  *GenericView
	Options  RenderOptions
}

// GenericView shows a configuration without a form generator.
type GenericView struct {
	Name    string
	Type    string
	Format  string
	Body    string
	Deleted bool
}

// Listing is the search panel shown alongside every page.
type Listing struct {
	Name  string
	Type  string
	Types []string
	Items []ListingItem
}

// ListingItem is one search hit.
type ListingItem struct {
	ID      string
	Name    string
	Type    string
	Deleted bool
}
