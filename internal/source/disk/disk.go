// Package disk adapts on-disk files and directories into import sources.
package disk

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/canopyhq/treeport/internal/source"
)

// listPageSize is the batch size for paged directory listings.
const listPageSize = 64

// File returns a leaf over a regular file.
func File(path string) source.Leaf {
	return &file{path: path}
}

type file struct {
	path string
	// name overrides the base-name default, used by Tree to carry
	// slash-relative names.
	name string
}

func (f *file) Name() string {
	if f.name != "" {
		return f.name
	}
	return filepath.Base(f.path)
}

func (f *file) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Dir returns a recursive directory handle with paged listing.
func Dir(path string) source.Directory {
	return &dir{path: path}
}

type dir struct {
	path string
	f    *os.File
	done bool
}

func (d *dir) Name() string { return filepath.Base(d.path) }

// Next returns the next page of children. The handle is opened lazily on
// the first call and closed once the listing is exhausted.
func (d *dir) Next(ctx context.Context) ([]source.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.done {
		return nil, nil
	}
	if d.f == nil {
		f, err := os.Open(d.path)
		if err != nil {
			return nil, err
		}
		d.f = f
	}

	entries, err := d.f.ReadDir(listPageSize)
	if len(entries) == 0 {
		d.f.Close()
		d.f = nil
		d.done = true
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, nil
	}

	nodes := make([]source.Node, 0, len(entries))
	for _, e := range entries {
		child := filepath.Join(d.path, e.Name())
		if e.IsDir() {
			nodes = append(nodes, Dir(child))
		} else {
			nodes = append(nodes, File(child))
		}
	}
	return nodes, nil
}

// Tree snapshots a directory into a flat collection of file leaves, one
// per regular file, named by their slash-relative path under root. The
// walk is concurrent, so results are sorted for determinism.
func Tree(root string) (source.Collection, error) {
	var (
		mu    sync.Mutex
		files []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		mu.Lock()
		files = append(files, filepath.ToSlash(rel))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	nodes := make(source.Collection, 0, len(files))
	for _, rel := range files {
		nodes = append(nodes, &file{path: filepath.Join(root, filepath.FromSlash(rel)), name: rel})
	}
	return nodes, nil
}
