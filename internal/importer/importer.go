// Package importer coordinates imports of external content (files,
// folders, and zip archives) into a virtual file store.
//
// Two entry points exist. ImportInto plants the input as a new subtree:
// archive contents keep their paths verbatim under a directory named
// after the archive. MergeInto plants the input as peer content of the
// target directory: an archive's shared wrapper folder is detected and
// elided so its contents merge cleanly.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/canopyhq/treeport/internal/archive"
	"github.com/canopyhq/treeport/internal/logging"
	"github.com/canopyhq/treeport/internal/monitoring"
	"github.com/canopyhq/treeport/internal/source"
	"github.com/canopyhq/treeport/internal/vfs"
	"github.com/canopyhq/treeport/internal/vpath"
)

// Importer drives import and merge operations against one store.
type Importer struct {
	store       vfs.Store
	dec         archive.Decoder
	log         *logging.Logger
	metrics     *monitoring.Metrics
	exclude     []string
	maxParallel int
}

// Option configures an Importer.
type Option func(*Importer)

// WithDecoder replaces the default zip decoder.
func WithDecoder(d archive.Decoder) Option {
	return func(imp *Importer) { imp.dec = d }
}

// WithLogger sets the operation logger.
func WithLogger(l *logging.Logger) Option {
	return func(imp *Importer) { imp.log = l }
}

// WithMetrics wires Prometheus collectors into the importer.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(imp *Importer) { imp.metrics = m }
}

// WithExclude drops entries matching any of the glob patterns before
// they reach the store.
func WithExclude(patterns ...string) Option {
	return func(imp *Importer) { imp.exclude = append(imp.exclude, patterns...) }
}

// WithMaxParallel bounds concurrently pending traversals and parallel
// write branches. Zero means unbounded.
func WithMaxParallel(n int) Option {
	return func(imp *Importer) { imp.maxParallel = n }
}

// WithMaxArchiveBytes caps accepted archive size on the default decoder.
func WithMaxArchiveBytes(n int64) Option {
	return func(imp *Importer) {
		if zd, ok := imp.dec.(*archive.ZipDecoder); ok {
			zd.MaxBytes = n
		}
	}
}

// New creates an Importer writing into store.
func New(store vfs.Store, opts ...Option) *Importer {
	imp := &Importer{
		store: store,
		dec:   &archive.ZipDecoder{},
		log:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

type mode int

const (
	importMode mode = iota
	mergeMode
)

func (m mode) String() string {
	if m == mergeMode {
		return "merge"
	}
	return "import"
}

// ImportInto imports input as a new subtree of dir. Archive contents are
// taken literally, rooted at a directory named after the archive file
// with its extension removed.
func (imp *Importer) ImportInto(ctx context.Context, dir vfs.Directory, input source.Node) error {
	return imp.run(ctx, dir, input, importMode)
}

// MergeInto merges input into dir as peer content. Archive contents have
// their common wrapper folder elided before merging.
func (imp *Importer) MergeInto(ctx context.Context, dir vfs.Directory, input source.Node) error {
	return imp.run(ctx, dir, input, mergeMode)
}

func (imp *Importer) run(ctx context.Context, dir vfs.Directory, input source.Node, m mode) error {
	started := time.Now()
	err := imp.do(ctx, dir, input, m)
	imp.metrics.ObserveImport(m.String(), err, started)

	if err != nil {
		imp.log.Error("import failed",
			zap.String("mode", m.String()),
			zap.String("target", dir.Path()),
			zap.Error(err))
		return err
	}
	imp.log.Info("import complete",
		zap.String("mode", m.String()),
		zap.String("target", dir.Path()),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (imp *Importer) do(ctx context.Context, dir vfs.Directory, input source.Node, m mode) error {
	p := imp.pipeline()

	if coll, ok := input.(source.Collection); ok {
		// Independent top-level inputs: one write branch each, fanned
		// out. A failed branch does not undo its siblings.
		branches := make([]Branch, len(coll))
		for i, n := range coll {
			branches[i] = imp.traversalBranch(n)
		}
		return p.Run(ctx, dir, branches, Parallel)
	}

	if l, ok := input.(source.Leaf); ok && archive.IsArchiveName(l.Name()) {
		return p.Run(ctx, dir, []Branch{imp.archiveBranch(l, m)}, Sequential)
	}

	return p.Run(ctx, dir, []Branch{imp.traversalBranch(input)}, Sequential)
}

// traversalBranch produces the entries of one non-archive top-level
// input. Archives encountered during traversal become rooted subtrees in
// place.
func (imp *Importer) traversalBranch(n source.Node) Branch {
	return func(ctx context.Context) ([]archive.Entry, error) {
		tr := &source.Traverser{
			Expand: func(ctx context.Context, name string, raw []byte) ([]archive.Entry, error) {
				return imp.expandArchive(name, raw, importMode)
			},
			MaxParallel: imp.maxParallel,
		}
		entries, err := tr.Traverse(ctx, n)
		if err != nil {
			return nil, err
		}
		return imp.filter(entries), nil
	}
}

// archiveBranch produces the entries of a top-level archive input under
// the entry point's own mode.
func (imp *Importer) archiveBranch(l source.Leaf, m mode) Branch {
	return func(ctx context.Context) ([]archive.Entry, error) {
		content, err := l.Content(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", source.ErrRead, l.Name(), err)
		}
		entries, err := imp.expandArchive(l.Name(), []byte(content), m)
		if err != nil {
			return nil, err
		}
		return imp.filter(entries), nil
	}
}

// expandArchive decodes raw bytes and rewrites entry paths for the given
// mode: merge elides the common wrapper prefix, import roots everything
// under the archive's base name.
func (imp *Importer) expandArchive(name string, raw []byte, m mode) ([]archive.Entry, error) {
	set, err := imp.dec.Decode(raw)
	if err != nil {
		return nil, err
	}
	set = archive.Sanitize(set)

	entries := set.Entries()
	switch m {
	case mergeMode:
		prefix := vpath.CommonPrefix(set.Paths())
		if len(prefix) == 0 {
			return entries, nil
		}
		imp.log.Debug("eliding archive wrapper",
			zap.String("archive", name),
			zap.Strings("prefix", prefix))
		out := entries[:0]
		for _, e := range entries {
			stripped, ok := vpath.StripPrefix(e.Path, prefix)
			if !ok {
				// The entry denoted the wrapper itself.
				continue
			}
			e.Path = stripped
			out = append(out, e)
		}
		return out, nil
	default:
		root := archive.BaseName(name)
		for i := range entries {
			entries[i].Path = root + "/" + entries[i].Path
		}
		return entries, nil
	}
}

// filter drops entries matching any exclude glob.
func (imp *Importer) filter(entries []archive.Entry) []archive.Entry {
	if len(imp.exclude) == 0 {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		if imp.excluded(e.Path) {
			imp.log.Debug("entry excluded", zap.String("path", e.Path))
			continue
		}
		out = append(out, e)
	}
	return out
}

func (imp *Importer) excluded(path string) bool {
	for _, pattern := range imp.exclude {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}

func (imp *Importer) pipeline() *pipeline {
	return &pipeline{
		store:       imp.store,
		log:         imp.log,
		metrics:     imp.metrics,
		maxParallel: imp.maxParallel,
	}
}
