package gotemplate

import (
	"errors"
	"io/fs"
	"sort"
)

// layeredFS resolves files against each layer in order; directory listings
// merge all layers so partial globs see every file.
type layeredFS struct {
	layers []fs.FS
}

func newLayeredFS(layers ...fs.FS) fs.FS {
	if len(layers) == 1 {
		return layers[0]
	}
	return layeredFS{layers: layers}
}

func (l layeredFS) Open(name string) (fs.File, error) {
	var firstErr error
	for _, layer := range l.layers {
		file, err := layer.Open(name)
		if err == nil {
			return file, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return nil, firstErr
}

func (l layeredFS) ReadDir(name string) ([]fs.DirEntry, error) {
	seen := make(map[string]struct{})
	var entries []fs.DirEntry
	found := false
	for _, layer := range l.layers {
		layerEntries, err := fs.ReadDir(layer, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		found = true
		for _, entry := range layerEntries {
			if _, dup := seen[entry.Name()]; dup {
				continue
			}
			seen[entry.Name()] = struct{}{}
			entries = append(entries, entry)
		}
	}
	if !found {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}
