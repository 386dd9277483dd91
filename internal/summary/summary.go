// Package summary aggregates and displays scan statistics.
package summary

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/treeward/treeward/internal/walker"
)

// Logger is the minimal logging interface required here.
type Logger interface {
	Info(format string, args ...interface{})
}

// Stats counts classified entries per status.
type Stats struct {
	New     int64
	Ignored int64
	Taken   int64
	Tracked int64
}

// Record counts one classified entry.
func (s *Stats) Record(status walker.Status) {
	switch status {
	case walker.StatusIgnored:
		s.Ignored++
	case walker.StatusTaken:
		s.Taken++
	case walker.StatusTracked:
		s.Tracked++
	default:
		s.New++
	}
}

// Total returns the number of classified entries.
func (s *Stats) Total() int64 {
	return s.New + s.Ignored + s.Taken + s.Tracked
}

// DisplayResults shows the end results of a scan.
func DisplayResults(log Logger, stats *Stats, duration time.Duration, quiet bool) {
	if quiet {
		return
	}
	log.Info("Classified %d entries: %d new, %d taken, %d ignored, %d tracked.",
		stats.Total(), stats.New, stats.Taken, stats.Ignored, stats.Tracked)
	log.Info("Scan complete in %v.", duration.Round(time.Millisecond))
}

// DisplaySkippedItems prints the entries the walk could not classify.
func DisplaySkippedItems(log Logger, items []walker.SkippedItem, output io.Writer, quiet bool) {
	infoLog := func(format string, args ...interface{}) {
		if !quiet {
			log.Info(format, args...)
		}
	}

	infoLog("--- Skipped entries (%d) ---", len(items))
	if len(items) == 0 {
		infoLog("No entries were skipped.")
		return
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})
	for _, item := range items {
		typeStr := "FILE"
		if item.IsDir {
			typeStr = "DIR "
		}
		fmt.Fprintf(output, "skipped %s: %s [%s]\n", typeStr, item.Path, item.Reason)
	}
}
