// Package archive adapts raw archive bytes into ordered entry sets for the
// import engine. Zip is the only supported container; recognition is by
// file-name suffix alone.
package archive

import (
	"errors"
	"strings"

	"github.com/cevaris/ordered_map"

	"github.com/canopyhq/treeport/internal/vpath"
)

// ErrDecode reports malformed archive bytes. Decode failures wrap it so
// callers can classify them with errors.Is.
var ErrDecode = errors.New("malformed archive")

// Entry is one named unit produced by decoding or traversal. Content is
// meaningful only for file entries.
type Entry struct {
	Path    string
	Dir     bool
	Content string
}

// Decoder turns raw bytes into an ordered entry set.
type Decoder interface {
	Decode(raw []byte) (*EntrySet, error)
}

// EntrySet is an insertion-ordered path-to-entry mapping. Iteration order
// matches the order entries were added, which for archives is the
// container's own enumeration order. The write pipeline depends on that
// order for its directory-before-file behavior, so it is structural here
// rather than an incidental property of map iteration.
type EntrySet struct {
	om *ordered_map.OrderedMap
}

// NewEntrySet returns an empty set.
func NewEntrySet() *EntrySet {
	return &EntrySet{om: ordered_map.NewOrderedMap()}
}

// Add inserts or replaces the entry keyed by its path.
func (s *EntrySet) Add(e Entry) {
	s.om.Set(e.Path, e)
}

// Len returns the number of entries.
func (s *EntrySet) Len() int {
	return s.om.Len()
}

// Walk calls fn for every entry in insertion order, stopping at the first
// error.
func (s *EntrySet) Walk(fn func(Entry) error) error {
	iter := s.om.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		if err := fn(kv.Value.(Entry)); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns all entry paths in insertion order.
func (s *EntrySet) Paths() []string {
	paths := make([]string, 0, s.Len())
	iter := s.om.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		paths = append(paths, kv.Key.(string))
	}
	return paths
}

// Entries returns all entries in insertion order.
func (s *EntrySet) Entries() []Entry {
	entries := make([]Entry, 0, s.Len())
	iter := s.om.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		entries = append(entries, kv.Value.(Entry))
	}
	return entries
}

// Sanitize returns a new set without hidden entries (dot-directories and
// archive tool metadata). Order of the surviving entries is preserved.
func Sanitize(s *EntrySet) *EntrySet {
	out := NewEntrySet()
	s.Walk(func(e Entry) error {
		if !vpath.IsHidden(e.Path) {
			out.Add(e)
		}
		return nil
	})
	return out
}

// IsArchiveName reports whether a file name denotes a supported archive.
// The check is a case-insensitive suffix match; content sniffing is
// deliberately not attempted.
func IsArchiveName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}

// BaseName returns the archive name with its extension removed, used to
// root import-mode subtrees.
func BaseName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}
