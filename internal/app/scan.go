package app

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/treeward/treeward/internal/printer"
	"github.com/treeward/treeward/internal/summary"
	"github.com/treeward/treeward/internal/walker"
	"github.com/treeward/treeward/internal/watch"
)

// runScan walks the tree, classifies every entry and renders the results;
// with --watch it then rescans whenever the tree changes.
func (a *App) runScan(root string) int {
	list, err := a.loadList(root)
	if err != nil {
		a.log.Error("cannot load ignore list: %v", err)
		return 1
	}
	a.log.Debug("rule list holds %d rules (%d user)", list.Len(), list.UserLen())

	scanOnce := func(ctx context.Context) int {
		start := time.Now()

		p := printer.New().WithOutput(a.Output).WithColors(a.cfg.UseColors)
		if a.cfg.JSONOutput {
			p.WithJSON(true).WithColors(false)
		} else if a.cfg.TreeOutput {
			p.WithTree(true)
		}

		stats := &summary.Stats{}
		walkFn := func(item walker.Item) error {
			p.PrintItem(item)
			stats.Record(item.Status)
			return nil
		}

		skipped, err := walker.Walk(root, list, walkFn,
			walker.WithLogger(a.log),
			walker.WithContext(ctx),
			walker.WithBruteForce(a.cfg.BruteForce),
		)
		if err != nil {
			a.log.Error("scan failed: %v", err)
			return 1
		}
		if err := p.Finalize(); err != nil {
			a.log.Error("cannot render results: %v", err)
			return 1
		}

		summary.DisplayResults(a.log, stats, time.Since(start), a.cfg.Quiet)
		if a.cfg.ShowSkipped {
			summary.DisplaySkippedItems(a.log, skipped, os.Stderr, a.cfg.Quiet)
		}
		return 0
	}

	if !a.cfg.Watch {
		return scanOnce(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if code := scanOnce(ctx); code != 0 {
		return code
	}
	skip := func(path string) bool {
		return filepath.Base(path) == StateDirName
	}
	a.log.Info("Watching %s for changes (interrupt to stop).", root)
	if err := watch.Run(ctx, root, skip, a.cfg.Debounce, a.log, func() { scanOnce(ctx) }); err != nil {
		a.log.Error("watch failed: %v", err)
		return 1
	}
	return 0
}
