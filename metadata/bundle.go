package metadata

import (
	_ "embed"
	"fmt"
	"sync"

	"golang.org/x/tools/txtar"

	"github.com/broady/builtins/resource"
)

// bundle holds the package files of the standard built-ins, one txtar
// section per file.
//
//go:embed builtins.txtar
var bundle []byte

var defaultLoader = sync.OnceValue(func() resource.Loader {
	fsys, err := txtar.FS(txtar.Parse(bundle))
	if err != nil {
		panic(fmt.Sprintf("metadata: invalid embedded bundle: %v", err))
	}
	return resource.NewFSLoader(fsys)
})

// DefaultLoader returns a loader over the embedded package files of the
// standard built-ins.
func DefaultLoader() resource.Loader {
	return defaultLoader()
}
