package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/canopyhq/treeport/internal/archive"
	"github.com/canopyhq/treeport/internal/logging"
	"github.com/canopyhq/treeport/internal/monitoring"
	"github.com/canopyhq/treeport/internal/vfs"
	"github.com/canopyhq/treeport/internal/vpath"
)

// ErrWrite reports a store-rejected create operation. Pipeline failures
// wrap it.
var ErrWrite = errors.New("store write rejected")

// Mode selects the write pipeline's ordering regime. Archive-sourced
// sequences are serialized because store mutation is not assumed safe
// under races and later entries may depend on directories created by
// earlier ones; independent top-level inputs fan out because they touch
// disjoint paths.
type Mode int

const (
	// Sequential awaits every write before issuing the next, across
	// all branches in order. The first failure aborts the remainder;
	// completed writes stay.
	Sequential Mode = iota
	// Parallel runs branches as concurrently pending operations,
	// writes within a branch staying sequential. A failed branch does
	// not cancel its siblings; every branch settles, the first failure
	// is surfaced after all of them, and completed writes stay.
	Parallel
)

func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// Branch produces one ordered entry sequence. Production happens inside
// the pipeline run so a parallel branch's traversal failure skips only
// that branch's writes.
type Branch func(ctx context.Context) ([]archive.Entry, error)

// pipeline applies ordered entry sequences to the target store.
type pipeline struct {
	store       vfs.Store
	log         *logging.Logger
	metrics     *monitoring.Metrics
	maxParallel int
}

// Run materializes every branch into target under the given regime.
func (p *pipeline) Run(ctx context.Context, target vfs.Directory, branches []Branch, mode Mode) error {
	if mode == Parallel {
		var g errgroup.Group
		if p.maxParallel > 0 {
			g.SetLimit(p.maxParallel)
		}
		for _, b := range branches {
			g.Go(func() error {
				return p.runBranch(ctx, target, b)
			})
		}
		return g.Wait()
	}

	for _, b := range branches {
		if err := p.runBranch(ctx, target, b); err != nil {
			return err
		}
	}
	return nil
}

// runBranch produces a branch's entries and writes them strictly in
// order, each write awaited before the next. No write is issued when
// production fails.
func (p *pipeline) runBranch(ctx context.Context, target vfs.Directory, b Branch) error {
	entries, err := b(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := p.write(ctx, target, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) write(ctx context.Context, target vfs.Directory, e archive.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.Dir {
		rel := strings.TrimSuffix(vpath.Normalize(e.Path), "/")
		if _, err := p.store.CreateDirectory(ctx, target, rel); err != nil {
			return fmt.Errorf("%w: create directory %q: %w", ErrWrite, e.Path, err)
		}
		p.metrics.ObserveWrite(true)
		p.log.Debug("directory created", zap.String("path", e.Path))
		return nil
	}

	// Parent directories are created ahead of the file: the store's
	// file creation assumes the directory chain already exists.
	if dirs := vpath.DirSegments(e.Path); len(dirs) > 0 {
		parent := strings.Join(dirs, "/")
		if _, err := p.store.CreateDirectory(ctx, target, parent); err != nil {
			return fmt.Errorf("%w: create directory %q: %w", ErrWrite, parent, err)
		}
		p.metrics.ObserveWrite(true)
	}
	if _, err := p.store.CreateFile(ctx, target, vpath.Normalize(e.Path), e.Content); err != nil {
		return fmt.Errorf("%w: create file %q: %w", ErrWrite, e.Path, err)
	}
	p.metrics.ObserveWrite(false)
	p.log.Debug("file created", zap.String("path", e.Path))
	return nil
}
