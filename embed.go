// Package campaignmgr provides embedded runtime resources (copy templates)
// and an overlay filesystem that checks local disk first, falling back to embedded.
package campaignmgr

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed copy/*.tmpl
var rawCopy embed.FS

// CopyTemplates is the embedded copy templates filesystem with the "copy/" prefix stripped.
var CopyTemplates = mustSub(rawCopy, "copy")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
// An empty localDir yields the embedded filesystem unchanged.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	if localDir == "" {
		return embedded
	}
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(filepath.Join(o.localDir, filepath.FromSlash(name)))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}
