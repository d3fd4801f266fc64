package dynform

import (
	"io/fs"

	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
)

// RuntimeAssetsFS exposes the browser runtime that performs live validation
// and the password toggle, so Go applications can serve it directly.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(dynform.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
