package walker

import "github.com/bethropolis/stitch/internal/utils"

// walkOptions configures a single traversal.
type walkOptions struct {
	logger         utils.Logger
	includeHidden  bool
	followSymlinks bool
}

func defaultOptions() walkOptions {
	return walkOptions{
		logger:         utils.NoopLogger{},
		includeHidden:  false,
		followSymlinks: false,
	}
}

// Option is a functional option for configuring a walk.
type Option func(*walkOptions)

// WithLogger sets a custom logger for the walker.
func WithLogger(logger utils.Logger) Option {
	return func(opts *walkOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithIncludeHidden includes dotfiles and dot-directories in the walk.
func WithIncludeHidden(include bool) Option {
	return func(opts *walkOptions) {
		opts.includeHidden = include
	}
}

// WithFollowSymlinks descends into directory symlinks. Cycles are detected
// and the offending link is kept as a leaf.
func WithFollowSymlinks(follow bool) Option {
	return func(opts *walkOptions) {
		opts.followSymlinks = follow
	}
}
