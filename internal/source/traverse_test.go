package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/canopyhq/treeport/internal/archive"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pagedDir serves its children in fixed-size batches, mimicking listing
// capabilities that page results.
type pagedDir struct {
	name    string
	batches [][]Node
	next    int
}

func (d *pagedDir) Name() string { return d.name }

func (d *pagedDir) Next(ctx context.Context) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.next >= len(d.batches) {
		return nil, nil
	}
	b := d.batches[d.next]
	d.next++
	return b, nil
}

type failingLeaf struct {
	name string
	err  error
}

func (f *failingLeaf) Name() string { return f.name }

func (f *failingLeaf) Content(ctx context.Context) (string, error) {
	return "", f.err
}

type failingDir struct {
	name string
	err  error
}

func (f *failingDir) Name() string { return f.name }

func (f *failingDir) Next(ctx context.Context) ([]Node, error) {
	return nil, f.err
}

func paths(entries []archive.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestTraverseSingleLeaf(t *testing.T) {
	tr := &Traverser{}
	entries, err := tr.Traverse(context.Background(), Bytes("a.txt", "hello"))
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Path)
	assert.Equal(t, "hello", entries[0].Content)
	assert.False(t, entries[0].Dir)
}

func TestTraverseNestedDirectories(t *testing.T) {
	input := Static("src",
		Bytes("main.go", "package main"),
		Static("sub",
			Bytes("a.txt", "a"),
			Bytes("b.txt", "b"),
		),
		Bytes("tail.txt", "t"),
	)

	tr := &Traverser{}
	entries, err := tr.Traverse(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/main.go",
		"src/sub/a.txt",
		"src/sub/b.txt",
		"src/tail.txt",
	}, paths(entries))
}

func TestTraversePagedListing(t *testing.T) {
	// Three non-empty batches then exhaustion. The union of all batches
	// must come back, no duplicates, no omissions.
	d := &pagedDir{
		name: "docs",
		batches: [][]Node{
			{Bytes("a.txt", "a"), Bytes("b.txt", "b")},
			{Bytes("c.txt", "c")},
			{Bytes("d.txt", "d"), Bytes("e.txt", "e")},
		},
	}

	tr := &Traverser{}
	entries, err := tr.Traverse(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"docs/a.txt", "docs/b.txt", "docs/c.txt", "docs/d.txt", "docs/e.txt",
	}, paths(entries))
}

func TestTraverseCollectionOrder(t *testing.T) {
	input := Collection{
		Bytes("one.txt", "1"),
		Static("dir", Bytes("two.txt", "2")),
		Bytes("three.txt", "3"),
	}

	tr := &Traverser{MaxParallel: 2}
	entries, err := tr.Traverse(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []string{"one.txt", "dir/two.txt", "three.txt"}, paths(entries))
}

func TestTraverseLeafReadFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	input := Static("src",
		Bytes("ok.txt", "fine"),
		&failingLeaf{name: "bad.txt", err: boom},
	)

	tr := &Traverser{}
	entries, err := tr.Traverse(context.Background(), input)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, entries, "no partial results on failure")
}

func TestTraverseListFailure(t *testing.T) {
	boom := errors.New("handle revoked")
	input := Collection{
		Bytes("ok.txt", "fine"),
		&failingDir{name: "gone", err: boom},
	}

	tr := &Traverser{}
	_, err := tr.Traverse(context.Background(), input)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrList)
	assert.ErrorIs(t, err, boom)
}

func TestTraverseArchiveLeafExpansion(t *testing.T) {
	tr := &Traverser{
		Expand: func(ctx context.Context, name string, raw []byte) ([]archive.Entry, error) {
			assert.Equal(t, "bundle.zip", name)
			assert.Equal(t, "zipbytes", string(raw))
			return []archive.Entry{
				{Path: "bundle/a.txt", Content: "a"},
				{Path: "bundle/sub/b.txt", Content: "b"},
			}, nil
		},
	}

	input := Static("docs", Bytes("bundle.zip", "zipbytes"))
	entries, err := tr.Traverse(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/bundle/a.txt", "docs/bundle/sub/b.txt"}, paths(entries))
}

func TestTraverseArchiveLeafWithoutExpander(t *testing.T) {
	tr := &Traverser{}
	entries, err := tr.Traverse(context.Background(), Bytes("bundle.zip", "zipbytes"))
	require.NoError(t, err)

	// Without an expander the zip travels as a plain file.
	assert.Equal(t, []string{"bundle.zip"}, paths(entries))
	assert.Equal(t, "zipbytes", entries[0].Content)
}

func TestTraverseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &Traverser{}
	_, err := tr.Traverse(ctx, Bytes("a.txt", "a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
