package summary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bethropolis/stitch/internal/classify"
	"github.com/bethropolis/stitch/internal/walker"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Info(format string, args ...interface{}) {
	r.lines = append(r.lines, format)
}

func TestCollect(t *testing.T) {
	verdicts := []classify.Verdict{
		{Status: classify.StatusIncluded, Size: 10},
		{Status: classify.StatusIncluded, Size: 32},
		{Status: classify.StatusSkippedBinary},
		{Status: classify.StatusSkippedOversize},
		{Status: classify.StatusSkippedUnreadable},
	}
	stats := Collect(verdicts)
	if stats.Included != 2 || stats.TotalBytes != 42 {
		t.Errorf("included: got %d files / %d bytes", stats.Included, stats.TotalBytes)
	}
	if stats.Binary != 1 || stats.Oversize != 1 || stats.Unreadable != 1 {
		t.Errorf("skip tallies wrong: %+v", stats)
	}
}

func TestDisplaySkippedItemsSortsByPath(t *testing.T) {
	items := []walker.SkippedItem{
		{Path: "z/later.txt", Reason: walker.ReasonIgnoredRule},
		{Path: "a/first.txt", Reason: walker.ReasonHidden, IsDir: false},
	}
	var out bytes.Buffer
	DisplaySkippedItems(&recordingLogger{}, items, &out, false)

	text := out.String()
	first := strings.Index(text, "a/first.txt")
	second := strings.Index(text, "z/later.txt")
	if first < 0 || second < 0 || first > second {
		t.Errorf("skipped items should be sorted by path:\n%s", text)
	}
}
