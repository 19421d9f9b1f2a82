package vpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "x.txt"}, Segments("a/b/x.txt"))
	assert.Equal(t, []string{"a", "b"}, Segments("a/b/"))
	assert.Equal(t, []string{"a", "b", "x.txt"}, Segments("a\\b\\x.txt"))
	assert.Equal(t, []string{"x.txt"}, Segments("x.txt"))
	assert.Nil(t, Segments(""))
}

func TestDirSegments(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{"nested file", "a/b/x.txt", []string{"a", "b"}},
		{"top-level file", "x.txt", nil},
		{"directory marker", "proj/", []string{"proj"}},
		{"nested directory marker", "proj/src/", []string{"proj", "src"}},
		{"backslashes", "a\\b\\x.txt", []string{"a", "b"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirSegments(tt.path))
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path   string
		hidden bool
	}{
		{".git/config", true},
		{"a/.cache/x.txt", true},
		{"__MACOSX/proj/x.txt", true},
		{"__MACOSX/", true},
		{".DS_Store", false}, // dotfile leaf name alone is kept
		{"a/b/.hidden", false},
		{".git/", true}, // trailing separator makes the dot segment non-final
		{"a/b/x.txt", false},
		{"x.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.hidden, IsHidden(tt.path))
		})
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"empty set", nil, nil},
		{"single path", []string{"a/b/x.txt"}, []string{"a", "b"}},
		{"shared two-segment prefix", []string{"a/b/x.txt", "a/b/y.txt"}, []string{"a", "b"}},
		{"diverge at first compared index", []string{"a/x.txt", "b/y.txt"}, nil},
		{"top-level path collapses", []string{"x.txt", "a/b/y.txt"}, nil},
		{"top-level path collapses either way", []string{"a/b/y.txt", "x.txt"}, nil},
		{"single shared segment never verified", []string{"a/x.txt", "a/y.txt"}, nil},
		{"wrapper folder with shallow sibling", []string{"proj/src/a.raml", "proj/README"}, []string{"proj"}},
		{"second segment divergence keeps the first", []string{"a/b/x.txt", "a/c/y.txt"}, []string{"a"}},
		{"directory marker entries participate", []string{"proj/src/a.raml", "proj/src/", "proj/README"}, []string{"proj"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommonPrefix(tt.paths))
		})
	}
}

func TestStripPrefix(t *testing.T) {
	p, ok := StripPrefix("a/b/x.txt", []string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, "x.txt", p)

	p, ok = StripPrefix("proj/src/a.raml", []string{"proj"})
	assert.True(t, ok)
	assert.Equal(t, "src/a.raml", p)

	// Entry that was exactly the elided wrapper is dropped.
	_, ok = StripPrefix("proj/", []string{"proj"})
	assert.False(t, ok)

	// Empty prefix leaves the path untouched.
	p, ok = StripPrefix("a/b/x.txt", nil)
	assert.True(t, ok)
	assert.Equal(t, "a/b/x.txt", p)
}
