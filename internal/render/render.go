// Package render turns the selected file list and tree shape into the final
// textual artifact, in Markdown or plain text.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bethropolis/stitch/internal/classify"
	"github.com/bethropolis/stitch/internal/walker"
)

// Format selects the output flavor.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// KnownFormat reports whether the format name is supported.
func KnownFormat(format string) bool {
	switch Format(format) {
	case FormatMarkdown, FormatText:
		return true
	}
	return false
}

// Renderer writes the bundle for one run. It consumes the walker's tree and
// the classifier's verdicts; it makes no filesystem access of its own.
type Renderer struct {
	format    Format
	rootLabel string
	now       func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a Renderer. rootLabel is the absolute root path shown in the
// bundle header.
func New(format Format, rootLabel string, opts ...Option) *Renderer {
	r := &Renderer{
		format:    format,
		rootLabel: rootLabel,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the full bundle to w.
func (r *Renderer) Render(w io.Writer, tree *walker.TreeNode, verdicts []classify.Verdict) error {
	treeLines := TreeLines(tree)
	if r.format == FormatText {
		return r.renderText(w, treeLines, verdicts)
	}
	return r.renderMarkdown(w, treeLines, verdicts)
}

func (r *Renderer) renderMarkdown(w io.Writer, treeLines []string, verdicts []classify.Verdict) error {
	included := 0
	for _, verdict := range verdicts {
		if verdict.Status == classify.StatusIncluded {
			included++
		}
	}

	var sb strings.Builder
	sb.WriteString("# Stitch Output\n\n")
	fmt.Fprintf(&sb, "- **Root**: `%s`\n", r.rootLabel)
	fmt.Fprintf(&sb, "- **Generated**: %s\n", r.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "- **Files included**: %d\n\n", included)

	sb.WriteString("## Folder Tree\n\n```text\n")
	for _, line := range treeLines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString("```\n\n## Files\n\n")

	for _, verdict := range verdicts {
		fmt.Fprintf(&sb, "### `%s`\n\n", verdict.Path)
		tag := languageTag(verdict.Path)
		fmt.Fprintf(&sb, "```%s\n", tag)
		body := fileBody(verdict)
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteString("```\n\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *Renderer) renderText(w io.Writer, treeLines []string, verdicts []classify.Verdict) error {
	var sb strings.Builder
	sb.WriteString("Stitch output\n")
	fmt.Fprintf(&sb, "Root: %s\n", r.rootLabel)
	fmt.Fprintf(&sb, "Generated: %s\n", r.now().Format("2006-01-02 15:04:05"))
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString("FOLDER TREE\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, line := range treeLines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString("\nFILES\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for _, verdict := range verdicts {
		fmt.Fprintf(&sb, "--- BEGIN FILE: %s ---\n", verdict.Path)
		body := fileBody(verdict)
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "--- END FILE: %s ---\n\n", verdict.Path)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// fileBody returns the rendered content for a verdict: the decoded text for
// included files, a skip note for everything else.
func fileBody(verdict classify.Verdict) string {
	switch verdict.Status {
	case classify.StatusIncluded:
		return verdict.Text
	case classify.StatusSkippedBinary:
		return "[Skipped: binary file]"
	case classify.StatusSkippedOversize:
		return fmt.Sprintf("[Skipped: file exceeds size limit (%d bytes)]", verdict.Size)
	default:
		return "[Skipped: unreadable file]"
	}
}

// TreeLines renders the tree shape with box-drawing branches. The root is
// labeled with a trailing slash, directories likewise.
func TreeLines(root *walker.TreeNode) []string {
	if root == nil {
		return nil
	}
	lines := []string{root.Name + "/"}
	appendTreeLines(&lines, root, "")
	return lines
}

func appendTreeLines(lines *[]string, node *walker.TreeNode, prefix string) {
	for i, child := range node.Children {
		last := i == len(node.Children)-1
		branch := "├── "
		extend := "│   "
		if last {
			branch = "└── "
			extend = "    "
		}
		label := child.Name
		if child.IsDir {
			label += "/"
		}
		*lines = append(*lines, prefix+branch+label)
		if child.IsDir {
			appendTreeLines(lines, child, prefix+extend)
		}
	}
}
