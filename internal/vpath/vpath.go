// Package vpath provides pure path utilities for the import engine.
//
// All functions operate on virtual store paths: `/`-separated segment
// strings. Backslash separators are accepted on input and normalized, so
// paths coming from Windows-style drops behave like native ones. A path
// with a trailing separator denotes a directory.
package vpath

import "strings"

// MetadataRoot is the reserved top-level directory that archive tools
// generate for resource forks. Everything under it is treated as hidden.
const MetadataRoot = "__MACOSX"

// Normalize converts backslash separators to forward slashes.
func Normalize(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// Segments splits a path into its non-empty segments.
func Segments(path string) []string {
	var segs []string
	for _, s := range strings.Split(Normalize(path), "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// DirSegments returns the directory portion of a path: every raw segment
// except the last. For a file path that is everything up to the final
// name; for a directory path (trailing separator) it is the directory's
// own segment chain. Top-level paths yield nil.
func DirSegments(path string) []string {
	raw := strings.Split(Normalize(path), "/")
	raw = raw[:len(raw)-1]
	var segs []string
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// IsHidden reports whether a path should be excluded from imports: some
// segment other than the final one begins with a dot, or the path lies
// under the reserved metadata root. A dotfile leaf name on its own is not
// hidden.
func IsHidden(path string) bool {
	raw := strings.Split(Normalize(path), "/")
	seen := 0
	for i, s := range raw {
		if s == "" {
			continue
		}
		if seen == 0 && s == MetadataRoot {
			return true
		}
		if i < len(raw)-1 && strings.HasPrefix(s, ".") {
			return true
		}
		seen++
	}
	return false
}

// CommonPrefix computes the shared leading directory-segment chain across
// the directory portions of the given paths.
//
// The scan intentionally starts at segment index 1 and never verifies
// agreement at index 0. Consequences, all load-bearing for archive
// wrapper-folder elision: a top-level path collapses the prefix to empty
// for the whole set, as does a candidate with fewer than two segments;
// two paths that disagree from their second segment onward keep the first
// path's leading segment. Callers must not "improve" this scan without
// revalidating against real archive fixtures.
func CommonPrefix(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	prefix := DirSegments(paths[0])
	for _, p := range paths[1:] {
		if len(prefix) == 0 {
			return nil
		}
		dirs := DirSegments(p)
		if len(dirs) == 0 || len(prefix) < 2 {
			// Nothing at index 1 to agree on.
			return nil
		}
		i := 1
		for i < len(prefix) && i < len(dirs) && prefix[i] == dirs[i] {
			i++
		}
		prefix = prefix[:i]
	}
	return prefix
}

// StripPrefix removes prefix's segments from the front of path. The
// second return is false when stripping consumes the entire path, i.e.
// the entry denoted exactly the elided wrapper directory and must be
// dropped by the caller.
func StripPrefix(path string, prefix []string) (string, bool) {
	if len(prefix) == 0 {
		return Normalize(path), true
	}
	segs := Segments(path)
	n := len(prefix)
	if n > len(segs) {
		n = len(segs)
	}
	rest := segs[n:]
	if len(rest) == 0 {
		return "", false
	}
	return strings.Join(rest, "/"), true
}
