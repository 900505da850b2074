package html

import (
	"context"
	"fmt"

	"github.com/goliatone/go-viewdef/pkg/history"
	"github.com/goliatone/go-viewdef/pkg/message"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/renderers/html/components"
	"github.com/goliatone/go-viewdef/pkg/theme"
)

// RenderPage renders a complete document: listing and history sidebar,
// toolbar, messages, the page body and any open dialog.
func (r *Renderer) RenderPage(ctx context.Context, page render.Page) ([]byte, error) {
	body, err := r.pageBody(ctx, page)
	if err != nil {
		return nil, err
	}

	listing, err := r.partial("listing", map[string]any{"listing": listingView(page.Listing)})
	if err != nil {
		return nil, err
	}
	recent, err := r.partial("history", map[string]any{"entries": historyView(page.History)})
	if err != nil {
		return nil, err
	}
	messages, err := r.partial("messages", map[string]any{"messages": messagesView(page.Messages)})
	if err != nil {
		return nil, err
	}
	var dialog string
	if page.Dialog != nil {
		if dialog, err = r.partial("dialog", map[string]any{"dialog": *page.Dialog}); err != nil {
			return nil, err
		}
	}

	scripts := []map[string]any{{"src": runtimeURL(page.Options), "defer": true}}
	var stylesheets []string
	stylesheets = append(stylesheets, stylesheetURL(page.Options))
	if page.Kind == render.PageEditor {
		styles, extra := r.components.Assets(r.components.Names())
		stylesheets = append(stylesheets, styles...)
		scripts = append(scripts, scriptsView(extra)...)
	}

	result, err := r.templates.RenderTemplate("templates/page", map[string]any{
		"page": map[string]any{
			"title":     page.Title,
			"kind":      string(page.Kind),
			"config_id": page.ConfigID,
		},
		"style":       theme.InlineStyle(page.Options.Theme),
		"stylesheets": stylesheets,
		"scripts":     scripts,
		"listing":     listing,
		"history":     recent,
		"toolbar":     page.Toolbar,
		"messages":    messages,
		"body":        body,
		"dialog":      dialog,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render page: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) pageBody(ctx context.Context, page render.Page) (string, error) {
	switch page.Kind {
	case render.PageEditor:
		if page.Form == nil {
			return "", fmt.Errorf("html renderer: editor page without form")
		}
		out, err := r.Render(ctx, page.Form, page.Options)
		return string(out), err
	case render.PageGeneric:
		if page.Generic == nil {
			return "", fmt.Errorf("html renderer: generic page without configuration")
		}
		return r.partial("generic", map[string]any{
			"id": page.ConfigID,
			"generic": map[string]any{
				"name":    page.Generic.Name,
				"type":    page.Generic.Type,
				"format":  page.Generic.Format,
				"body":    page.Generic.Body,
				"deleted": page.Generic.Deleted,
			},
		})
	default:
		return r.partial("landing", map[string]any{"title": page.Title})
	}
}

func (r *Renderer) partial(name string, data map[string]any) (string, error) {
	out, err := r.templates.RenderTemplate("templates/partials/"+name, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: render %s: %w", name, err)
	}
	return out, nil
}

func listingView(l render.Listing) map[string]any {
	items := make([]map[string]any, 0, len(l.Items))
	for _, item := range l.Items {
		items = append(items, map[string]any{
			"id":      item.ID,
			"name":    item.Name,
			"type":    item.Type,
			"deleted": item.Deleted,
		})
	}
	return map[string]any{
		"name":  l.Name,
		"type":  l.Type,
		"types": l.Types,
		"items": items,
	}
}

func historyView(entries []history.Entry) []history.Entry {
	if entries == nil {
		return []history.Entry{}
	}
	return entries
}

func messagesView(views []message.View) []message.View {
	if views == nil {
		return []message.View{}
	}
	return views
}

func scriptsView(scripts []components.Script) []map[string]any {
	out := make([]map[string]any, 0, len(scripts))
	for _, s := range scripts {
		out = append(out, map[string]any{
			"src":    s.Src,
			"inline": s.Inline,
			"defer":  s.Defer,
			"module": s.Module,
		})
	}
	return out
}
