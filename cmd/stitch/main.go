// Command stitch walks a directory tree and emits a single Markdown or
// plain-text bundle combining the folder tree and the contents of every
// included text file.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bethropolis/stitch/internal/app"
	"github.com/bethropolis/stitch/internal/config"
	"github.com/bethropolis/stitch/internal/ignore"
)

const version = "1.0.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.New()
	cfg.Version = version

	var (
		maxFileSize string
		noGitignore bool
		configPath  string
	)

	rootCmd := &cobra.Command{
		Use:   "stitch [directory]",
		Short: "Concatenate a directory tree into a single context bundle",
		Long: `Stitch walks a directory tree and emits one Markdown or plain-text file
combining a folder-tree view with the contents of every included text file,
respecting gitignore rules, presets and custom ignore patterns.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.ShowVersion {
				fmt.Println(version)
				return nil
			}
			if len(args) > 0 {
				cfg.RootDir = args[0]
			}

			size, err := config.ParseSize(maxFileSize)
			if err != nil {
				return err
			}
			cfg.MaxFileSize = size
			cfg.UseGitignore = !noGitignore

			fileConfig, err := config.LoadFile(cfg.RootDir, configPath)
			if err != nil {
				return err
			}
			if err := fileConfig.Apply(cfg, cmd.Flags().Changed); err != nil {
				return err
			}

			cfg.UseColors = !cfg.NoColor && isatty.IsTerminal(os.Stderr.Fd())

			return app.New(cfg).Run()
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.OutputFile, "output", "o", "", "Output file path (default: auto-named stitch-<timestamp>)")
	flags.BoolVar(&cfg.ToStdout, "stdout", false, "Write the bundle to stdout instead of a file")
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "Output format (md, txt)")
	flags.StringVar(&cfg.GitignorePath, "gitignore", "", "Path to a gitignore file to respect (default: <root>/.gitignore)")
	flags.BoolVar(&noGitignore, "no-gitignore", false, "Do not respect gitignore files even if present")
	flags.StringVarP(&cfg.Preset, "preset", "p", "", fmt.Sprintf("Ignore preset (%s)", strings.Join(ignore.PresetNames(), ", ")))
	flags.StringArrayVarP(&cfg.ExtraIgnores, "ignore", "i", nil, "Extra ignore pattern, gitignore syntax (repeatable)")
	flags.BoolVar(&cfg.IncludeHidden, "include-hidden", false, "Include dotfiles and dot-directories")
	flags.StringVar(&maxFileSize, "max-file-size", "1m", "Skip files larger than SIZE (e.g. 500k, 2m)")
	flags.BoolVar(&cfg.FollowSymlinks, "follow-symlinks", false, "Follow symlinks (cycle-safe)")
	flags.StringVar(&cfg.Encoding, "encoding", cfg.Encoding, "Preferred text encoding (IANA name)")
	flags.BoolVar(&cfg.Concurrent, "concurrent", false, "Classify files concurrently")
	flags.IntVar(&cfg.MaxWorkers, "workers", cfg.MaxWorkers, "Max number of concurrent workers")
	flags.BoolVarP(&cfg.CopyToClip, "copy", "c", false, "Also copy the bundle to the system clipboard")
	flags.BoolVar(&cfg.CountTokens, "tokens", false, "Log an estimated token count for the bundle")
	flags.BoolVar(&cfg.ShowSkipped, "show-skipped", false, "List skipped files/directories and reasons at the end")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Suppress INFO messages")
	flags.BoolVarP(&cfg.Verbose, "verbose", "V", false, "Enable verbose (DEBUG) logging")
	flags.BoolVar(&cfg.NoColor, "no-color", false, "Disable color output")
	flags.StringVar(&configPath, "config", "", "Config file path (default: <root>/"+config.FileName+")")
	flags.BoolVarP(&cfg.ShowVersion, "version", "v", false, "Show version information")

	return rootCmd
}
