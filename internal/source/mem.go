package source

import "context"

// Bytes returns a leaf over in-memory content, e.g. a picked file whose
// bytes are already loaded.
func Bytes(name, content string) Leaf {
	return &bytesLeaf{name: name, content: content}
}

type bytesLeaf struct {
	name    string
	content string
}

func (b *bytesLeaf) Name() string { return b.name }

func (b *bytesLeaf) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.content, nil
}

// Static returns a directory handle over a fixed child list, delivered
// as a single batch.
func Static(name string, children ...Node) Directory {
	return &staticDir{name: name, children: children}
}

type staticDir struct {
	name     string
	children []Node
	done     bool
}

func (d *staticDir) Name() string { return d.name }

func (d *staticDir) Next(ctx context.Context) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.done {
		return nil, nil
	}
	d.done = true
	return d.children, nil
}
