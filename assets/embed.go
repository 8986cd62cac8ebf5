// Package assets embeds the default world: its manifest, tileset and room documents.
package assets

import (
	"embed"
	"io/fs"
	"os"
)

// Manifest is the name of the world manifest inside FS.
const Manifest = "world.yaml"

//go:embed world.yaml *.tmx *.tsx
var FS embed.FS

// Open returns dir as a file system, or the embedded world when dir is empty.
func Open(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return FS
}
