// Package config holds the run configuration and validates it before any
// traversal starts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/bethropolis/stitch/internal/classify"
	"github.com/bethropolis/stitch/internal/ignore"
	"github.com/bethropolis/stitch/internal/render"
)

// DefaultMaxFileSize is the size ceiling applied when none is configured.
const DefaultMaxFileSize = 1024 * 1024 // 1 MiB

// Config holds every setting for one run. It is assembled by the CLI layer
// and passed down explicitly; nothing in the core reads process-wide state.
type Config struct {
	// Directory settings
	RootDir string

	// Output settings
	OutputFile string
	ToStdout   bool
	Format     string
	CopyToClip bool

	// Filtering settings
	GitignorePath string // explicit gitignore file; empty means discover
	UseGitignore  bool
	Preset        string
	ExtraIgnores  []string
	IncludeHidden bool

	// Traversal settings
	FollowSymlinks bool

	// Classification settings
	MaxFileSize int64 // bytes; 0 means no ceiling
	Encoding    string

	// Processing settings
	Concurrent bool
	MaxWorkers int

	// Logging settings
	Verbose     bool
	Quiet       bool
	NoColor     bool
	UseColors   bool
	ShowSkipped bool
	CountTokens bool

	// Version info
	ShowVersion bool
	Version     string
}

// New returns a Config with defaults matching an interactive run.
func New() *Config {
	return &Config{
		RootDir:      ".",
		Format:       string(render.FormatMarkdown),
		UseGitignore: true,
		MaxFileSize:  DefaultMaxFileSize,
		Encoding:     "utf-8",
		MaxWorkers:   runtime.NumCPU(),
		Version:      "1.0.0",
	}
}

// ConfigurationError marks a failure resolved before traversal begins. The
// CLI maps it to a non-zero exit.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Msg, e.Err)
	}
	return "config: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Validate checks everything that can fail before the walk: the root
// directory, the preset name, the encoding name, the output format and an
// explicitly configured gitignore path.
func (c *Config) Validate() error {
	absRoot, err := filepath.Abs(c.RootDir)
	if err != nil {
		return &ConfigurationError{Msg: fmt.Sprintf("invalid root directory %q", c.RootDir), Err: err}
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return &ConfigurationError{Msg: fmt.Sprintf("root directory %q", absRoot), Err: err}
	}
	if !info.IsDir() {
		return &ConfigurationError{Msg: fmt.Sprintf("path %q is not a directory", absRoot)}
	}
	c.RootDir = absRoot

	if !render.KnownFormat(c.Format) {
		return &ConfigurationError{Msg: fmt.Sprintf("unknown output format %q (want md or txt)", c.Format)}
	}

	if _, err := ignore.PresetPatterns(c.Preset); err != nil {
		return &ConfigurationError{Msg: "invalid preset", Err: err}
	}

	if _, err := classify.NewDecoder(c.Encoding); err != nil {
		return &ConfigurationError{Msg: "invalid encoding", Err: err}
	}

	if c.GitignorePath != "" {
		if _, err := os.Stat(c.GitignorePath); err != nil {
			return &ConfigurationError{Msg: fmt.Sprintf("gitignore file %q", c.GitignorePath), Err: err}
		}
	}

	if c.MaxWorkers < 1 {
		c.MaxWorkers = 1
	}

	return nil
}

// sizeFactors maps size suffixes to byte multipliers.
var sizeFactors = map[byte]int64{
	'k': 1024,
	'm': 1024 * 1024,
	'g': 1024 * 1024 * 1024,
}

// ParseSize parses a human size spec like "500k", "2m" or "4096" into bytes.
// The empty string yields the default ceiling.
func ParseSize(spec string) (int64, error) {
	trimmed := strings.ToLower(strings.TrimSpace(spec))
	if trimmed == "" {
		return DefaultMaxFileSize, nil
	}

	factor := int64(1)
	if f, ok := sizeFactors[trimmed[len(trimmed)-1]]; ok {
		factor = f
		trimmed = trimmed[:len(trimmed)-1]
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || value < 0 {
		return 0, &ConfigurationError{Msg: fmt.Sprintf("invalid size value %q", spec)}
	}
	return int64(value * float64(factor)), nil
}
