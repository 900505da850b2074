package render

import (
	"context"

	"github.com/goliatone/go-viewdef/pkg/editor"
)

// Renderer converts an editor form into a byte representation (HTML, terminal
// transcript, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form *editor.Form, options RenderOptions) ([]byte, error)
}

// FragmentRenderer renders a single block subtree. Renderers that support
// incremental updates implement it so OpAppend patches can carry markup.
type FragmentRenderer interface {
	RenderBlock(ctx context.Context, block *editor.Block, options RenderOptions) ([]byte, error)
}

// PageRenderer renders complete pages of the configuration UI.
type PageRenderer interface {
	RenderPage(ctx context.Context, page Page) ([]byte, error)
}
