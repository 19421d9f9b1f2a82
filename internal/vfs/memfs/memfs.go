// Package memfs is an in-memory reference implementation of the vfs
// store: a mutex-guarded tree of named nodes with uuid identities and
// sniffed MIME types. It backs the engine's tests and the treeport
// command, and can snapshot itself to JSON for persisted-tree clients.
package memfs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/canopyhq/treeport/internal/vfs"
)

// FS is an in-memory virtual file store.
type FS struct {
	mu   sync.RWMutex
	root *node
}

type node struct {
	id       string
	name     string
	dir      bool
	content  string
	mime     string
	children map[string]*node
}

func newNode(name string, dir bool) *node {
	n := &node{id: uuid.NewString(), name: name, dir: dir}
	if dir {
		n.children = make(map[string]*node)
	}
	return n
}

// New returns an empty store.
func New() *FS {
	return &FS{root: newNode("", true)}
}

// Root returns the handle for the store's root directory.
func (fs *FS) Root() vfs.Directory {
	return &handle{fs: fs, path: ""}
}

type handle struct {
	fs   *FS
	path string // slash path relative to root, "" for root itself
}

func (h *handle) Path() string { return "/" + h.path }

type fileHandle struct {
	path string
}

func (f *fileHandle) Path() string { return "/" + f.path }

// CreateDirectory implements vfs.Store. Existing directories along the
// path are reused; a file blocking the path is an error.
func (fs *FS) CreateDirectory(ctx context.Context, in vfs.Directory, rel string) (vfs.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	base, err := fs.resolve(in)
	if err != nil {
		return nil, err
	}

	cur := base.node
	path := base.path
	for _, seg := range segments(rel) {
		child, ok := cur.children[seg]
		if !ok {
			child = newNode(seg, true)
			cur.children[seg] = child
		} else if !child.dir {
			return nil, fmt.Errorf("%s: not a directory", join(path, seg))
		}
		cur = child
		path = join(path, seg)
	}
	return &handle{fs: fs, path: path}, nil
}

// CreateFile implements vfs.Store. Every directory along rel must exist;
// an existing file with the same name is overwritten.
func (fs *FS) CreateFile(ctx context.Context, in vfs.Directory, rel string, content string) (vfs.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segs := segments(rel)
	if len(segs) == 0 {
		return nil, fmt.Errorf("empty file path")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	base, err := fs.resolve(in)
	if err != nil {
		return nil, err
	}

	cur := base.node
	path := base.path
	for _, seg := range segs[:len(segs)-1] {
		child, ok := cur.children[seg]
		if !ok {
			return nil, fmt.Errorf("%s: no such directory", join(path, seg))
		}
		if !child.dir {
			return nil, fmt.Errorf("%s: not a directory", join(path, seg))
		}
		cur = child
		path = join(path, seg)
	}

	name := segs[len(segs)-1]
	if existing, ok := cur.children[name]; ok && existing.dir {
		return nil, fmt.Errorf("%s: is a directory", join(path, name))
	}

	f := newNode(name, false)
	f.content = content
	f.mime = mimetype.Detect([]byte(content)).String()
	cur.children[name] = f
	return &fileHandle{path: join(path, name)}, nil
}

type resolved struct {
	node *node
	path string
}

// resolve maps a directory handle back to its node. Handles from other
// stores or paths removed since issuance are rejected.
func (fs *FS) resolve(in vfs.Directory) (resolved, error) {
	h, ok := in.(*handle)
	if !ok || h.fs != fs {
		return resolved{}, fmt.Errorf("foreign directory handle %T", in)
	}

	cur := fs.root
	for _, seg := range segments(h.path) {
		child, ok := cur.children[seg]
		if !ok || !child.dir {
			return resolved{}, fmt.Errorf("%s: no such directory", h.path)
		}
		cur = child
	}
	return resolved{node: cur, path: h.path}, nil
}

// Info describes one node for inspection.
type Info struct {
	ID      string
	Path    string
	Dir     bool
	Content string
	MIME    string
}

// Walk visits every node except the root in depth-first order, children
// sorted by name, so assertions and prints are deterministic.
func (fs *FS) Walk(fn func(Info) error) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return walkNode(fs.root, "", fn)
}

func walkNode(n *node, path string, fn func(Info) error) error {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child := n.children[name]
		childPath := join(path, name)
		if err := fn(Info{
			ID:      child.id,
			Path:    childPath,
			Dir:     child.dir,
			Content: child.content,
			MIME:    child.mime,
		}); err != nil {
			return err
		}
		if child.dir {
			if err := walkNode(child, childPath, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stat reports the node at a slash path, if present.
func (fs *FS) Stat(path string) (Info, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	cur := fs.root
	segs := segments(path)
	for i, seg := range segs {
		child, ok := cur.children[seg]
		if !ok {
			return Info{}, false
		}
		if i == len(segs)-1 {
			return Info{
				ID:      child.id,
				Path:    strings.Join(segs, "/"),
				Dir:     child.dir,
				Content: child.content,
				MIME:    child.mime,
			}, true
		}
		if !child.dir {
			return Info{}, false
		}
		cur = child
	}
	return Info{}, false
}

func segments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func join(path, seg string) string {
	if path == "" {
		return seg
	}
	return path + "/" + seg
}
