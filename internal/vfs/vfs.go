// Package vfs declares the virtual file store capability the import
// engine writes into. The store itself lives outside the engine; memfs
// provides a reference implementation.
package vfs

import "context"

// Directory is an opaque handle to a directory in the store.
type Directory interface {
	// Path is the directory's store-absolute path, for logging and
	// derived handles.
	Path() string
}

// File is an opaque handle to a created file.
type File interface {
	Path() string
}

// Store is the mutation capability consumed by the write pipeline.
// CreateDirectory is idempotent: creating an existing directory must not
// fail. CreateFile expects every directory along rel to exist already;
// the pipeline creates parents ahead of files, so a store may reject
// orphaned paths. An existing file at rel is overwritten by name.
type Store interface {
	CreateFile(ctx context.Context, in Directory, rel string, content string) (File, error)
	CreateDirectory(ctx context.Context, in Directory, rel string) (Directory, error)
}
