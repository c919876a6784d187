// Package classify decides, per candidate file, whether its content is
// included as text or skipped as binary, oversize or unreadable.
package classify

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bethropolis/stitch/internal/utils"
)

// Status is the classification outcome for one candidate file.
type Status int

const (
	StatusIncluded Status = iota
	StatusSkippedBinary
	StatusSkippedOversize
	StatusSkippedUnreadable
)

// String returns a short human-readable label for the status.
func (s Status) String() string {
	switch s {
	case StatusIncluded:
		return "included"
	case StatusSkippedBinary:
		return "binary"
	case StatusSkippedOversize:
		return "oversize"
	case StatusSkippedUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Verdict is the immutable classification result for one candidate.
type Verdict struct {
	// Path is the candidate's root-relative path.
	Path string

	Status Status

	// Size is the file size in bytes as stated by the filesystem.
	Size int64

	// Text holds the decoded content for included verdicts.
	Text string

	// Encoding names the encoding actually used for included verdicts.
	Encoding string

	// Fallback is true when replacement decoding was needed.
	Fallback bool

	// Err retains the underlying cause for unreadable verdicts.
	Err error
}

const (
	// sniffLen bounds the prefix read for the binary heuristic.
	sniffLen = 2048

	// nonTextThreshold is the proportion of non-text bytes in the sniffed
	// prefix above which a file is treated as binary. The exact value is a
	// documented heuristic, not a contract; an embedded NUL byte is the only
	// guaranteed binary signal.
	nonTextThreshold = 0.30
)

// Classifier produces a Verdict per candidate path. It is pure with respect
// to the filesystem snapshot: no caching, no mutation, and safe for
// concurrent use across independent paths.
type Classifier struct {
	sizeCeiling int64 // bytes; 0 means no ceiling
	decoder     *Decoder
	log         utils.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for per-file tracing.
func WithLogger(logger utils.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.log = logger
		}
	}
}

// New creates a Classifier. A zero sizeCeiling disables the oversize check;
// a nil decoder defaults to UTF-8.
func New(sizeCeiling int64, decoder *Decoder, opts ...Option) *Classifier {
	if decoder == nil {
		decoder, _ = NewDecoder("")
	}
	c := &Classifier{
		sizeCeiling: sizeCeiling,
		decoder:     decoder,
		log:         utils.NoopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify stats, sniffs and decodes the file at absolutePath. It never
// returns an error: every failure mode is folded into the verdict so one bad
// file cannot abort the run.
func (c *Classifier) Classify(absolutePath, relativePath string) Verdict {
	verdict := Verdict{Path: relativePath}

	info, err := os.Stat(absolutePath)
	if err != nil {
		verdict.Status = StatusSkippedUnreadable
		verdict.Err = fmt.Errorf("stat: %w", err)
		return verdict
	}
	verdict.Size = info.Size()

	if !info.Mode().IsRegular() {
		verdict.Status = StatusSkippedUnreadable
		verdict.Err = fmt.Errorf("not a regular file (mode %s)", info.Mode())
		return verdict
	}

	// A file of exactly the ceiling size is still included; only strictly
	// larger files are skipped, and without reading any content.
	if c.sizeCeiling > 0 && verdict.Size > c.sizeCeiling {
		c.log.Debug("classify: %q oversize (%d > %d bytes)", relativePath, verdict.Size, c.sizeCeiling)
		verdict.Status = StatusSkippedOversize
		return verdict
	}

	fileHandle, err := os.Open(absolutePath)
	if err != nil {
		verdict.Status = StatusSkippedUnreadable
		verdict.Err = fmt.Errorf("open: %w", err)
		return verdict
	}
	defer fileHandle.Close()

	prefix := make([]byte, sniffLen)
	n, err := io.ReadFull(fileHandle, prefix)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		verdict.Status = StatusSkippedUnreadable
		verdict.Err = fmt.Errorf("read: %w", err)
		return verdict
	}
	prefix = prefix[:n]

	if looksBinary(prefix) {
		c.log.Debug("classify: %q sniffed as binary", relativePath)
		verdict.Status = StatusSkippedBinary
		return verdict
	}

	rest, err := io.ReadAll(fileHandle)
	if err != nil {
		verdict.Status = StatusSkippedUnreadable
		verdict.Err = fmt.Errorf("read: %w", err)
		return verdict
	}
	content := append(prefix, rest...)

	decoded, err := c.decoder.Decode(content)
	if err != nil {
		verdict.Status = StatusSkippedUnreadable
		verdict.Err = err
		return verdict
	}

	verdict.Status = StatusIncluded
	verdict.Text = decoded.Text
	verdict.Encoding = c.decoder.Name()
	verdict.Fallback = decoded.Fallback
	return verdict
}

// looksBinary applies the binary sniff to a bounded prefix: any NUL byte, or
// a high proportion of control bytes outside common whitespace.
func looksBinary(prefix []byte) bool {
	if len(prefix) == 0 {
		return false
	}
	if bytes.IndexByte(prefix, 0x00) >= 0 {
		return true
	}
	nonText := 0
	for _, b := range prefix {
		if b >= 0x20 {
			continue
		}
		switch b {
		case '\a', '\b', '\t', '\n', '\f', '\r', 0x1b:
			// bell, backspace, whitespace and escape are fine in text files
		default:
			nonText++
		}
	}
	return float64(nonText)/float64(len(prefix)) > nonTextThreshold
}
