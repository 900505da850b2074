package viewdef

import (
	"github.com/goliatone/go-viewdef/internal/loader"
	"github.com/goliatone/go-viewdef/pkg/orchestrator"
)

// LoaderOptions configures NewLoader.
type LoaderOptions = loader.Options

// NewLoader constructs a document loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options LoaderOptions) orchestrator.Loader {
	return loader.New(options)
}
