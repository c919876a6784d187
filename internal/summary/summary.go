// Package summary reports run statistics after a scan completes.
package summary

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bethropolis/stitch/internal/classify"
	"github.com/bethropolis/stitch/internal/walker"
)

// Logger defines the minimal logging interface required
type Logger interface {
	Info(format string, args ...interface{})
}

// Stats aggregates the outcome of one run's classifications.
type Stats struct {
	Included   int
	Binary     int
	Oversize   int
	Unreadable int
	TotalBytes int64 // bytes of included text
}

// Collect tallies verdicts into run statistics.
func Collect(verdicts []classify.Verdict) Stats {
	var stats Stats
	for _, verdict := range verdicts {
		switch verdict.Status {
		case classify.StatusIncluded:
			stats.Included++
			stats.TotalBytes += verdict.Size
		case classify.StatusSkippedBinary:
			stats.Binary++
		case classify.StatusSkippedOversize:
			stats.Oversize++
		case classify.StatusSkippedUnreadable:
			stats.Unreadable++
		}
	}
	return stats
}

// DisplayResults shows the end results of a scan operation
func DisplayResults(logger Logger, stats Stats, duration time.Duration, quiet bool) {
	if quiet {
		return
	}
	logger.Info("Stitched %d files (%d bytes of text).", stats.Included, stats.TotalBytes)
	if skipped := stats.Binary + stats.Oversize + stats.Unreadable; skipped > 0 {
		logger.Info("Skipped %d candidates: %d binary, %d oversize, %d unreadable.",
			skipped, stats.Binary, stats.Oversize, stats.Unreadable)
	}
	logger.Info("Scan complete in %v.", duration.Round(time.Millisecond))
}

// DisplaySkippedItems formats and prints information about skipped items
func DisplaySkippedItems(logger Logger, skippedItems []walker.SkippedItem, output io.Writer, quiet bool) {
	infoLog := func(format string, args ...interface{}) {
		if !quiet {
			logger.Info(format, args...)
		}
	}

	infoLog("--- Skipped Items (%d) ---", len(skippedItems))
	if len(skippedItems) > 0 {
		// Sort for consistent output
		sort.Slice(skippedItems, func(i, j int) bool {
			return skippedItems[i].Path < skippedItems[j].Path
		})
		for _, item := range skippedItems {
			typeStr := "FILE"
			if item.IsDir {
				typeStr = "DIR " // Add space for alignment
			}
			fmt.Fprintf(output, "Skipped %s: %-.*s [%s]\n",
				typeStr,
				50, // Max width for path column
				item.Path,
				item.Reason,
			)
		}
	} else {
		infoLog("No items were skipped.")
	}
	infoLog("--- End Skipped Items ---")
}
