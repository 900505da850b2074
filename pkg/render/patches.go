package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-viewdef/pkg/editor"
)

// WirePatch is a patch as sent to the browser runtime. HTML is set for
// appends only.
type WirePatch struct {
	Op     editor.Op `json:"op"`
	Target string    `json:"target"`
	Text   string    `json:"text,omitempty"`
	HTML   string    `json:"html,omitempty"`
}

// EncodePatches renders the blocks carried by append patches.
func EncodePatches(ctx context.Context, r FragmentRenderer, patches []editor.Patch, options RenderOptions) ([]WirePatch, error) {
	out := make([]WirePatch, 0, len(patches))
	for _, p := range patches {
		wire := WirePatch{Op: p.Op, Target: p.Target, Text: p.Text}
		if p.Op == editor.OpAppend {
			if p.Block == nil {
				return nil, fmt.Errorf("render: append patch for %q has no block", p.Target)
			}
			if r == nil {
				return nil, fmt.Errorf("render: fragment renderer is required for append patches")
			}
			html, err := r.RenderBlock(ctx, p.Block, options)
			if err != nil {
				return nil, fmt.Errorf("render: block %s: %w", p.Block.ID, err)
			}
			wire.HTML = string(html)
		}
		out = append(out, wire)
	}
	return out, nil
}
