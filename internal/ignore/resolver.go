// Package ignore merges layered pattern sources into one ignore decision per path.
//
// Sources are combined in increasing precedence: builtin defaults, the
// discovered or explicit gitignore file, the active preset, and user-supplied
// patterns. A decision scans every rule in that order and the last matching
// rule wins, so a high-precedence negation can re-include a path excluded by
// a lower layer.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bethropolis/stitch/internal/pattern"
	"github.com/bethropolis/stitch/internal/utils"
)

// DefaultPatterns are always-active ignores for VCS metadata, editor state
// and obviously non-text artifacts. They sit at the lowest precedence and can
// be overridden by any later layer.
func DefaultPatterns() []string {
	return []string{
		".git/",
		".svn/",
		".hg/",
		".DS_Store",
		"Thumbs.db",
		".idea/",
		".vscode/",
		"*.exe",
		"*.dll",
		"*.bin",
	}
}

// Sources collects the raw pattern inputs for building a Resolver.
type Sources struct {
	// Defaults is the builtin always-ignore layer. Nil means DefaultPatterns.
	Defaults []string

	// GitignoreLines holds the raw lines of the discovered or explicit
	// gitignore file. Empty when gitignore handling is disabled.
	GitignoreLines []string

	// Preset names a builtin pattern bundle; empty means none. An unknown
	// name is a configuration error.
	Preset string

	// Extra holds user-supplied patterns, the highest-precedence layer.
	Extra []string
}

// Resolver answers "is this path ignored?" for one traversal. It is
// stateless after construction and safe for concurrent readers.
type Resolver struct {
	layers []pattern.Set
	log    utils.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for match tracing.
func WithLogger(logger utils.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.log = logger
		}
	}
}

// Build parses every source into its own pattern set and records them in
// precedence order. It fails only on configuration problems, never on
// malformed patterns.
func Build(sources Sources, opts ...Option) (*Resolver, error) {
	resolver := &Resolver{log: utils.NoopLogger{}}
	for _, opt := range opts {
		opt(resolver)
	}

	defaults := sources.Defaults
	if defaults == nil {
		defaults = DefaultPatterns()
	}

	presetLines, err := PresetPatterns(sources.Preset)
	if err != nil {
		return nil, err
	}

	resolver.layers = []pattern.Set{
		pattern.Parse(defaults),
		pattern.Parse(sources.GitignoreLines),
		pattern.Parse(presetLines),
		pattern.Parse(sources.Extra),
	}

	total := 0
	for _, layer := range resolver.layers {
		total += layer.Len()
	}
	resolver.log.Debug("ignore: resolver built with %d rules across %d layers", total, len(resolver.layers))

	return resolver, nil
}

// Decide reports whether the root-relative path is ignored. relativePath must
// use forward slashes. The root itself is never ignored.
func (r *Resolver) Decide(relativePath string, isDir bool) bool {
	if r == nil {
		return false
	}
	if relativePath == "" || relativePath == "." {
		return false
	}

	matched := false
	negated := false
	for _, layer := range r.layers {
		if m, n := layer.Match(relativePath, isDir); m {
			matched = true
			negated = n
		}
	}
	if matched && !negated {
		r.log.Debug("ignore: %q excluded by pattern rules", relativePath)
	}
	return matched && !negated
}

// LoadGitignoreFile reads the raw lines of a gitignore file. A missing file
// yields no lines and no error when mustExist is false; an explicitly
// configured file that cannot be read is an error.
func LoadGitignoreFile(path string, mustExist bool) ([]string, error) {
	fileHandle, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil, nil
		}
		return nil, fmt.Errorf("ignore: reading gitignore file %q: %w", path, err)
	}
	defer fileHandle.Close()

	var lines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ignore: scanning gitignore file %q: %w", path, err)
	}
	return lines, nil
}

// presets are builtin pattern bundles keyed by lowercase name.
var presets = map[string][]string{
	"python": {
		"__pycache__/",
		"*.py[cod]",
		".mypy_cache/",
		".pytest_cache/",
		".tox/",
		".venv/",
		"venv/",
		"env/",
		"build/",
		"dist/",
		"*.egg-info/",
	},
	"node": {
		"node_modules/",
		"dist/",
		"build/",
		".next/",
		".nuxt/",
		".cache/",
		"coverage/",
		"*.log",
	},
	"go": {
		"vendor/",
		"bin/",
		"*.test",
		"*.out",
		"coverage.*",
	},
}

// PresetNames returns the available preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetPatterns resolves a preset name to its pattern lines. The empty name
// resolves to no patterns; an unknown name is an error.
func PresetPatterns(name string) ([]string, error) {
	if name == "" {
		return nil, nil
	}
	lines, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("ignore: unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return lines, nil
}
