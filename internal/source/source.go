// Package source models the heterogeneous inputs an import can receive
// and flattens them into ordered entry sequences. An input is a single
// byte-bearing item, a recursive directory handle, or a flat collection
// of either.
package source

import (
	"context"
	"errors"
)

// ErrRead reports an unreadable byte source. Traversal failures caused by
// leaf reads wrap it.
var ErrRead = errors.New("source read failed")

// ErrList reports a failed directory listing.
var ErrList = errors.New("directory listing failed")

// Node is one traversable input. Concrete inputs implement Leaf or
// Directory; Collection groups several nodes.
type Node interface {
	Name() string
}

// Leaf is a byte-bearing item with a declared name. Content blocks until
// the external source delivers or ctx is done.
type Leaf interface {
	Node
	Content(ctx context.Context) (string, error)
}

// Directory is a recursive handle with paged child listing. Next returns
// the next batch of children; an empty batch signals exhaustion. Some
// listing capabilities page their results, so callers must keep calling
// Next until they see an empty batch.
type Directory interface {
	Node
	Next(ctx context.Context) ([]Node, error)
}

// Collection is a flat list of mixed inputs, e.g. a multi-item drop. Its
// elements are independent top-level inputs with no inter-dependency.
type Collection []Node

// Name implements Node. A collection has no name of its own.
func (Collection) Name() string { return "" }
