package walker

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bethropolis/stitch/internal/ignore"
)

// writeTree creates files under dir. Keys use forward slashes; parent
// directories are created as needed.
func writeTree(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, content, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func buildResolver(t *testing.T, sources ignore.Sources) *ignore.Resolver {
	t.Helper()
	resolver, err := ignore.Build(sources)
	if err != nil {
		t.Fatal(err)
	}
	return resolver
}

func candidatePaths(result *Result) []string {
	paths := make([]string, 0, len(result.Candidates))
	for _, candidate := range result.Candidates {
		paths = append(paths, candidate.RelativePath)
	}
	return paths
}

func TestWalkDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"b.txt":       []byte("b"),
		"a.txt":       []byte("a"),
		"sub/c.txt":   []byte("c"),
		"sub/a.txt":   []byte("a"),
		"zz/deep.txt": []byte("d"),
	})
	resolver := buildResolver(t, ignore.Sources{Defaults: []string{}})

	first, err := Walk(dir, resolver)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"a.txt", "b.txt", "sub/a.txt", "sub/c.txt", "zz/deep.txt"}
	if got := candidatePaths(first); !reflect.DeepEqual(got, want) {
		t.Errorf("candidate order: got %v, want %v", got, want)
	}

	// Idempotence: an unchanged snapshot yields an identical sequence.
	second, err := Walk(dir, resolver)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if !reflect.DeepEqual(candidatePaths(first), candidatePaths(second)) {
		t.Error("two walks over the same snapshot must agree")
	}
}

func TestWalkPrunesIgnoredDirectories(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"a.txt":         []byte("hello bulk"),
		".env":          []byte("SECRET=1"),
		"build/out.bin": {0x00, 0x01, 0x02},
		".gitignore":    []byte("build/\n"),
	})
	resolver := buildResolver(t, ignore.Sources{
		Defaults:       []string{},
		GitignoreLines: []string{"build/"},
	})

	result, err := Walk(dir, resolver)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []string{"a.txt"}
	if got := candidatePaths(result); !reflect.DeepEqual(got, want) {
		t.Errorf("candidates: got %v, want %v", got, want)
	}

	for _, item := range result.Skipped {
		if item.Path == "build" && item.Reason != ReasonIgnoredRule {
			t.Errorf("build skipped for %q, want ignore rule", item.Reason)
		}
		if item.Path == ".env" && item.Reason != ReasonHidden {
			t.Errorf(".env skipped for %q, want hidden policy", item.Reason)
		}
	}
	// Nothing under a pruned directory is ever evaluated.
	for _, item := range result.Skipped {
		if item.Path == "build/out.bin" {
			t.Error("contents of a pruned directory must not be visited")
		}
	}
}

func TestWalkNegationCannotResurrectPrunedSubtree(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"keep.txt":     []byte("x"),
		"out/keep.txt": []byte("x"),
	})
	resolver := buildResolver(t, ignore.Sources{
		Defaults:       []string{},
		GitignoreLines: []string{"out/"},
		Extra:          []string{"!out/keep.txt"},
	})

	result, err := Walk(dir, resolver)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := candidatePaths(result); !reflect.DeepEqual(got, []string{"keep.txt"}) {
		t.Errorf("negation must not reach into a pruned directory: got %v", got)
	}
}

func TestWalkHiddenPolicyIndependentOfPatterns(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		".config": []byte("hidden"),
		"a.txt":   []byte("visible"),
	})
	resolver := buildResolver(t, ignore.Sources{Defaults: []string{}})

	excluded, err := Walk(dir, resolver)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := candidatePaths(excluded); !reflect.DeepEqual(got, []string{"a.txt"}) {
		t.Errorf("hidden excluded by default: got %v", got)
	}

	included, err := Walk(dir, resolver, WithIncludeHidden(true))
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := candidatePaths(included); !reflect.DeepEqual(got, []string{".config", "a.txt"}) {
		t.Errorf("hidden included on request: got %v", got)
	}
}

func TestWalkTreeShape(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"src/main.go": []byte("package main"),
		"README.md":   []byte("# hi"),
	})
	resolver := buildResolver(t, ignore.Sources{Defaults: []string{}})

	result, err := Walk(dir, resolver)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	root := result.Tree
	if !root.IsDir || root.Path != "" {
		t.Fatalf("unexpected root node: %+v", root)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if root.Children[0].Name != "README.md" || root.Children[0].IsDir {
		t.Errorf("first child should be README.md file, got %+v", root.Children[0])
	}
	src := root.Children[1]
	if src.Name != "src" || !src.IsDir || len(src.Children) != 1 {
		t.Fatalf("unexpected src node: %+v", src)
	}
	if src.Children[0].Path != "src/main.go" {
		t.Errorf("unexpected leaf: %+v", src.Children[0])
	}
}

func TestWalkSymlinkNotFollowedIsLeaf(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"real/file.txt": []byte("x"),
	})
	if err := os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	resolver := buildResolver(t, ignore.Sources{Defaults: []string{}})

	result, err := Walk(dir, resolver)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	// The link's target contents must not become candidates.
	if got := candidatePaths(result); !reflect.DeepEqual(got, []string{"real/file.txt"}) {
		t.Errorf("candidates: got %v", got)
	}
	// But the link itself is recorded in the tree.
	found := false
	for _, child := range result.Tree.Children {
		if child.Name == "link" {
			found = true
			if len(child.Children) != 0 {
				t.Error("unfollowed symlink must be a leaf")
			}
		}
	}
	if !found {
		t.Error("symlink should appear as a tree leaf")
	}
}

func TestWalkSymlinkFollowed(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"real/file.txt": []byte("x"),
	})
	if err := os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	resolver := buildResolver(t, ignore.Sources{Defaults: []string{}})

	result, err := Walk(dir, resolver, WithFollowSymlinks(true))
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"link/file.txt", "real/file.txt"}
	if got := candidatePaths(result); !reflect.DeepEqual(got, want) {
		t.Errorf("candidates: got %v, want %v", got, want)
	}
}

func TestWalkSymlinkCycleTerminates(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"a/file.txt": []byte("x"),
	})
	// a/loop points back to a, closing a cycle through the ancestor.
	if err := os.Symlink(filepath.Join(dir, "a"), filepath.Join(dir, "a", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	resolver := buildResolver(t, ignore.Sources{Defaults: []string{}})

	result, err := Walk(dir, resolver, WithFollowSymlinks(true))
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := candidatePaths(result); !reflect.DeepEqual(got, []string{"a/file.txt"}) {
		t.Errorf("candidates: got %v", got)
	}

	cycleRecorded := false
	for _, item := range result.Skipped {
		if item.Reason == ReasonSymlinkCycle {
			cycleRecorded = true
		}
	}
	if !cycleRecorded {
		t.Error("the cyclic link should be recorded as skipped")
	}
}

func TestWalkUnreadableDirectoryIsRecovered(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"ok.txt":          []byte("fine"),
		"locked/file.txt": []byte("hidden"),
	})
	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	resolver := buildResolver(t, ignore.Sources{Defaults: []string{}})
	result, err := Walk(dir, resolver)
	if err != nil {
		t.Fatalf("a per-entry failure must not abort the walk: %v", err)
	}
	if got := candidatePaths(result); !reflect.DeepEqual(got, []string{"ok.txt"}) {
		t.Errorf("candidates: got %v", got)
	}

	recovered := false
	for _, item := range result.Skipped {
		if item.Path == "locked" && item.Reason == ReasonReadError {
			recovered = true
		}
	}
	if !recovered {
		t.Errorf("locked directory should be skipped with a read error, got %+v", result.Skipped)
	}
}
