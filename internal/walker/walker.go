package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bethropolis/stitch/internal/ignore"
)

// Walk traverses the tree rooted at root depth-first, consulting the resolver
// for every entry and pruning ignored directories before descending. Child
// order within a directory is by name, ascending and case-sensitive, so the
// candidate sequence is reproducible for a given filesystem snapshot.
//
// Per-entry read failures are recorded as skipped items and never abort the
// walk; only a root that cannot be resolved at all is a hard error.
func Walk(root string, resolver *ignore.Resolver, opts ...Option) (*Result, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("walker: resolving root %q: %w", root, err)
	}

	state := &walkState{
		opts:     options,
		resolver: resolver,
		result: &Result{
			Tree: &TreeNode{Name: filepath.Base(absRoot), Path: "", IsDir: true},
		},
		onStack: make(map[string]struct{}),
	}

	if options.followSymlinks {
		// Cycles are only possible when following symlinks; seed the guard
		// with the root's canonical identity.
		if canonical, evalErr := filepath.EvalSymlinks(absRoot); evalErr == nil {
			state.onStack[canonical] = struct{}{}
		}
	}

	options.logger.Debug("walker: starting walk at %s (hidden=%v, symlinks=%v)",
		absRoot, options.includeHidden, options.followSymlinks)

	state.walkDir(absRoot, "", state.result.Tree)
	return state.result, nil
}

type walkState struct {
	opts     walkOptions
	resolver *ignore.Resolver
	result   *Result

	// onStack holds the canonical identities of directories currently open
	// on the traversal stack. Only populated when following symlinks.
	onStack map[string]struct{}
}

func (s *walkState) walkDir(absDir, relDir string, node *TreeNode) {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		s.skip(relDir, ReasonReadError, true, err)
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		rel := name
		if relDir != "" {
			rel = relDir + "/" + name
		}
		absPath := filepath.Join(absDir, name)

		// The hidden-file policy is independent of ignore rules: a dotfile is
		// excluded even when no pattern matches it.
		if !s.opts.includeHidden && strings.HasPrefix(name, ".") {
			s.skip(rel, ReasonHidden, entry.IsDir(), nil)
			continue
		}

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			s.visitSymlink(absPath, rel, name, node)
		case entry.IsDir():
			s.visitDir(absPath, rel, name, node)
		case entry.Type().IsRegular():
			s.visitFile(absPath, rel, name, node)
		default:
			s.skip(rel, ReasonNotRegular, false, nil)
		}
	}
}

func (s *walkState) visitDir(absPath, rel, name string, parent *TreeNode) {
	if s.resolver.Decide(rel, true) {
		// Pruned: nothing under this directory is evaluated, so no negation
		// can resurrect its contents.
		s.skip(rel, ReasonIgnoredRule, true, nil)
		return
	}

	if s.opts.followSymlinks {
		canonical, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			s.skip(rel, ReasonReadError, true, err)
			return
		}
		if _, open := s.onStack[canonical]; open {
			// Already on the traversal stack: keep the entry as a leaf
			// instead of recursing forever.
			parent.Children = append(parent.Children, &TreeNode{Name: name, Path: rel, IsDir: true})
			s.skip(rel, ReasonSymlinkCycle, true, nil)
			return
		}
		s.onStack[canonical] = struct{}{}
		defer delete(s.onStack, canonical)
	}

	child := &TreeNode{Name: name, Path: rel, IsDir: true}
	parent.Children = append(parent.Children, child)
	s.opts.logger.Debug("walker: descending into %q", rel)
	s.walkDir(absPath, rel, child)
}

func (s *walkState) visitFile(absPath, rel, name string, parent *TreeNode) {
	if s.resolver.Decide(rel, false) {
		s.skip(rel, ReasonIgnoredRule, false, nil)
		return
	}
	parent.Children = append(parent.Children, &TreeNode{Name: name, Path: rel})
	s.result.Candidates = append(s.result.Candidates, Candidate{
		AbsolutePath: absPath,
		RelativePath: rel,
	})
}

func (s *walkState) visitSymlink(absPath, rel, name string, parent *TreeNode) {
	target, err := os.Stat(absPath)

	if !s.opts.followSymlinks {
		// Not following: the link shows up as a leaf in the tree but is
		// never descended and never becomes a candidate.
		targetIsDir := err == nil && target.IsDir()
		if s.resolver.Decide(rel, targetIsDir) {
			s.skip(rel, ReasonIgnoredRule, targetIsDir, nil)
			return
		}
		parent.Children = append(parent.Children, &TreeNode{Name: name, Path: rel, IsDir: targetIsDir})
		s.skip(rel, ReasonSymlink, targetIsDir, nil)
		return
	}

	if err != nil {
		s.skip(rel, ReasonSymlinkBroken, false, err)
		return
	}

	switch {
	case target.IsDir():
		s.visitDir(absPath, rel, name, parent)
	case target.Mode().IsRegular():
		s.visitFile(absPath, rel, name, parent)
	default:
		s.skip(rel, ReasonNotRegular, false, nil)
	}
}

func (s *walkState) skip(rel string, reason SkippedReason, isDir bool, err error) {
	if rel == "" {
		rel = "."
	}
	s.opts.logger.Debug("walker: skipping %q (%s)", rel, reason)
	s.result.Skipped = append(s.result.Skipped, SkippedItem{
		Path:   rel,
		Reason: reason,
		IsDir:  isDir,
		Err:    err,
	})
}
