package source

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/canopyhq/treeport/internal/archive"
)

// ExpandFunc expands an archive leaf encountered during traversal into
// the entries of the subtree it denotes, rooted at the archive's own
// name. The orchestrator supplies it so traversal stays free of archive
// policy.
type ExpandFunc func(ctx context.Context, name string, raw []byte) ([]archive.Entry, error)

// Traverser flattens input nodes into ordered file entries.
type Traverser struct {
	// Expand handles leaves recognized as archives. When nil such
	// leaves are read as plain files.
	Expand ExpandFunc

	// MaxParallel bounds concurrent child traversals. Zero means no
	// bound.
	MaxParallel int
}

// Traverse expands one input into its leaf entries. Directory contents
// appear in listing order; a collection's results appear in element
// order. Any child failure fails the whole traversal with that child's
// error and no partial results.
func (t *Traverser) Traverse(ctx context.Context, n Node) ([]archive.Entry, error) {
	return t.walk(ctx, "", n)
}

func (t *Traverser) walk(ctx context.Context, prefix string, n Node) ([]archive.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch v := n.(type) {
	case Collection:
		return t.fanOut(ctx, prefix, v)
	case Directory:
		children, err := t.list(ctx, v)
		if err != nil {
			return nil, err
		}
		return t.fanOut(ctx, join(prefix, v.Name()), children)
	case Leaf:
		return t.leaf(ctx, prefix, v)
	default:
		return nil, fmt.Errorf("unsupported input %T", n)
	}
}

// list drains a paged directory handle. Listing capabilities may return
// results in batches, so Next is reissued until an empty batch comes
// back.
func (t *Traverser) list(ctx context.Context, d Directory) ([]Node, error) {
	var children []Node
	for {
		batch, err := d.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrList, d.Name(), err)
		}
		if len(batch) == 0 {
			return children, nil
		}
		children = append(children, batch...)
	}
}

// fanOut traverses children as independently pending operations and
// concatenates their results in child order.
func (t *Traverser) fanOut(ctx context.Context, prefix string, children []Node) ([]archive.Entry, error) {
	results := make([][]archive.Entry, len(children))
	g, gctx := errgroup.WithContext(ctx)
	if t.MaxParallel > 0 {
		g.SetLimit(t.MaxParallel)
	}
	for i, child := range children {
		g.Go(func() error {
			entries, err := t.walk(gctx, prefix, child)
			if err != nil {
				return err
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []archive.Entry
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat, nil
}

func (t *Traverser) leaf(ctx context.Context, prefix string, l Leaf) ([]archive.Entry, error) {
	content, err := l.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrRead, l.Name(), err)
	}

	if t.Expand != nil && archive.IsArchiveName(l.Name()) {
		sub, err := t.Expand(ctx, l.Name(), []byte(content))
		if err != nil {
			return nil, err
		}
		for i := range sub {
			sub[i].Path = join(prefix, sub[i].Path)
		}
		return sub, nil
	}

	return []archive.Entry{{Path: join(prefix, l.Name()), Content: content}}, nil
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
