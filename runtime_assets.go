package viewdef

import (
	"io/fs"

	"github.com/goliatone/go-viewdef/pkg/renderers/html"
)

// RuntimeAssetsFS exposes the editor stylesheet and browser runtime so Go
// applications can serve them next to rendered forms.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(viewdef.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return html.AssetsFS()
}
