package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/canopyhq/treeport/internal/config"
	"github.com/canopyhq/treeport/internal/importer"
	"github.com/canopyhq/treeport/internal/logging"
	"github.com/canopyhq/treeport/internal/monitoring"
	"github.com/canopyhq/treeport/internal/source"
	"github.com/canopyhq/treeport/internal/source/disk"
	"github.com/canopyhq/treeport/internal/vfs/memfs"
)

func main() {
	// Parse flags
	merge := flag.Bool("merge", false, "Merge inputs into the target directory (elides archive wrapper folders)")
	target := flag.String("target", "workspace", "Target directory inside the store")
	restorePath := flag.String("restore", "", "Seed the store from a JSON snapshot file before importing")
	snapshotPath := flag.String("snapshot", "", "Write a JSON snapshot of the resulting tree to this file")
	quiet := flag.Bool("quiet", false, "Do not print the resulting tree")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: treeport [flags] <file | directory | archive.zip> ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.LoadOrDefault()
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		merge:        *merge,
		target:       *target,
		restorePath:  *restorePath,
		snapshotPath: *snapshotPath,
		quiet:        *quiet,
	}
	if err := run(ctx, cfg, logger, opts, flag.Args()); err != nil {
		logger.Error("treeport failed", zap.Error(err))
		os.Exit(1)
	}
}

type options struct {
	merge        bool
	target       string
	restorePath  string
	snapshotPath string
	quiet        bool
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, opts options, args []string) error {
	fs := memfs.New()
	if opts.restorePath != "" {
		data, err := os.ReadFile(opts.restorePath)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		if err := fs.Restore(data); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
	}

	dir, err := fs.CreateDirectory(ctx, fs.Root(), opts.target)
	if err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	input, err := classify(args)
	if err != nil {
		return err
	}

	imp := importer.New(fs,
		importer.WithLogger(logger),
		importer.WithMetrics(monitoring.NewMetrics(prometheus.DefaultRegisterer)),
		importer.WithExclude(cfg.Import.Exclude...),
		importer.WithMaxParallel(cfg.Import.MaxParallel),
		importer.WithMaxArchiveBytes(cfg.Import.MaxArchiveBytes),
	)

	if opts.merge {
		err = imp.MergeInto(ctx, dir, input)
	} else {
		err = imp.ImportInto(ctx, dir, input)
	}
	if err != nil {
		return err
	}

	if !opts.quiet {
		printTree(fs)
	}

	if opts.snapshotPath != "" {
		data, err := fs.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		if err := os.WriteFile(opts.snapshotPath, data, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("snapshot written", zap.String("path", opts.snapshotPath))
	}
	return nil
}

// classify maps each argument to an input shape by what sits on disk: a
// directory becomes a recursive handle, anything else a leaf. Archive
// handling is decided later by file name, not here.
func classify(paths []string) (source.Node, error) {
	nodes := make([]source.Node, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat input: %w", err)
		}
		if info.IsDir() {
			nodes = append(nodes, disk.Dir(p))
			continue
		}
		nodes = append(nodes, disk.File(p))
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return source.Collection(nodes), nil
}

func printTree(fs *memfs.FS) {
	fs.Walk(func(info memfs.Info) error {
		depth := strings.Count(info.Path, "/")
		name := info.Path[strings.LastIndex(info.Path, "/")+1:]
		if info.Dir {
			name += "/"
		}
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), name)
		return nil
	})
}
