// Package app wires configuration, traversal, classification and rendering
// into one run.
package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bethropolis/stitch/internal/classify"
	"github.com/bethropolis/stitch/internal/clipboard"
	"github.com/bethropolis/stitch/internal/config"
	"github.com/bethropolis/stitch/internal/ignore"
	"github.com/bethropolis/stitch/internal/logger"
	"github.com/bethropolis/stitch/internal/render"
	"github.com/bethropolis/stitch/internal/summary"
	"github.com/bethropolis/stitch/internal/walker"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"
)

// App encapsulates the main application functionality
type App struct {
	cfg  *config.Config
	log  *logger.Logger
	clip clipboard.Copier

	// Output receives the bundle when writing to stdout; exposed so tests
	// can capture it.
	Output io.Writer
}

// New creates a new App instance
func New(cfg *config.Config) *App {
	// Configure color globally
	color.NoColor = !cfg.UseColors

	log := logger.New(os.Stderr, cfg.Verbose, cfg.UseColors)
	if cfg.Quiet {
		log.WithLevel(logger.LevelWarn)
	}

	return &App{
		cfg:    cfg,
		log:    log,
		clip:   clipboard.NewService(),
		Output: os.Stdout,
	}
}

// Run executes one scan. Configuration problems abort before any traversal;
// per-file failures are folded into the output and never abort the run.
func (a *App) Run() error {
	startTime := time.Now()

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	resolver, err := a.buildResolver()
	if err != nil {
		return err
	}

	a.log.Info("Scanning directory: %s", a.cfg.RootDir)
	result, err := walker.Walk(a.cfg.RootDir, resolver,
		walker.WithLogger(a.log),
		walker.WithIncludeHidden(a.cfg.IncludeHidden),
		walker.WithFollowSymlinks(a.cfg.FollowSymlinks),
	)
	if err != nil {
		return err
	}
	a.log.Debug("Walk produced %d candidates, %d skipped entries",
		len(result.Candidates), len(result.Skipped))

	verdicts, err := a.classifyAll(result.Candidates)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	renderer := render.New(render.Format(a.cfg.Format), a.cfg.RootDir)
	if err := renderer.Render(&buf, result.Tree, verdicts); err != nil {
		return fmt.Errorf("rendering output: %w", err)
	}
	bundle := buf.String()

	if err := a.writeOutput(bundle); err != nil {
		return err
	}

	if a.cfg.CopyToClip {
		if err := a.clip.Copy(bundle); err != nil {
			a.log.Warn("Could not copy output to clipboard: %v", err)
		} else {
			a.log.Info("Output copied to clipboard.")
		}
	}

	if a.cfg.CountTokens {
		if tokens, err := summary.CountTokens(bundle); err != nil {
			a.log.Warn("Token estimate unavailable: %v", err)
		} else {
			a.log.Info("Estimated tokens: %d", tokens)
		}
	}

	stats := summary.Collect(verdicts)
	summary.DisplayResults(a.log, stats, time.Since(startTime), a.cfg.Quiet)

	if a.cfg.ShowSkipped {
		summary.DisplaySkippedItems(a.log, result.Skipped, os.Stderr, a.cfg.Quiet)
	}

	return nil
}

// buildResolver assembles the four layered pattern sources. An explicit
// gitignore path that cannot be read is a configuration error; a discovered
// one that is missing simply contributes nothing.
func (a *App) buildResolver() (*ignore.Resolver, error) {
	var gitignoreLines []string
	if a.cfg.UseGitignore {
		path := a.cfg.GitignorePath
		mustExist := path != ""
		if path == "" {
			path = filepath.Join(a.cfg.RootDir, ".gitignore")
		}
		lines, err := ignore.LoadGitignoreFile(path, mustExist)
		if err != nil {
			return nil, &config.ConfigurationError{Msg: "loading gitignore", Err: err}
		}
		gitignoreLines = lines
		a.log.Debug("Loaded %d gitignore lines from %s", len(lines), path)
	}

	return ignore.Build(ignore.Sources{
		GitignoreLines: gitignoreLines,
		Preset:         a.cfg.Preset,
		Extra:          a.cfg.ExtraIgnores,
	}, ignore.WithLogger(a.log))
}

// classifyAll classifies every candidate, optionally in parallel. Verdicts
// are written by index so the canonical traversal order is preserved either
// way.
func (a *App) classifyAll(candidates []walker.Candidate) ([]classify.Verdict, error) {
	decoder, err := classify.NewDecoder(a.cfg.Encoding)
	if err != nil {
		return nil, &config.ConfigurationError{Msg: "invalid encoding", Err: err}
	}
	classifier := classify.New(a.cfg.MaxFileSize, decoder, classify.WithLogger(a.log))

	verdicts := make([]classify.Verdict, len(candidates))
	if !a.cfg.Concurrent || len(candidates) < 2 {
		for i, candidate := range candidates {
			verdicts[i] = classifier.Classify(candidate.AbsolutePath, candidate.RelativePath)
		}
		return verdicts, nil
	}

	a.log.Debug("Classifying %d candidates with %d workers", len(candidates), a.cfg.MaxWorkers)
	var group errgroup.Group
	group.SetLimit(a.cfg.MaxWorkers)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		group.Go(func() error {
			verdicts[i] = classifier.Classify(candidate.AbsolutePath, candidate.RelativePath)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

// writeOutput sends the bundle to stdout or to a file, auto-naming the file
// when no path was configured.
func (a *App) writeOutput(bundle string) error {
	if a.cfg.ToStdout {
		_, err := io.WriteString(a.Output, bundle)
		return err
	}

	path := a.cfg.OutputFile
	if path == "" {
		ext := "md"
		if render.Format(a.cfg.Format) == render.FormatText {
			ext = "txt"
		}
		path = fmt.Sprintf("stitch-%d.%s", time.Now().Unix(), ext)
	}
	if err := os.WriteFile(path, []byte(bundle), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	a.log.Info("Wrote %s", path)
	return nil
}
