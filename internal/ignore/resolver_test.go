package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecideLastMatchWinsWithinLayer(t *testing.T) {
	resolver, err := Build(Sources{
		Defaults:       []string{},
		GitignoreLines: []string{"*.log", "!keep.log"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !resolver.Decide("a.log", false) {
		t.Error("a.log should be ignored")
	}
	if resolver.Decide("keep.log", false) {
		t.Error("keep.log should be re-included by the negation")
	}
	if resolver.Decide("main.go", false) {
		t.Error("unmatched paths must not be ignored")
	}
}

func TestDecideHigherLayerOverridesLower(t *testing.T) {
	resolver, err := Build(Sources{
		Defaults: []string{},
		// gitignore excludes all logs; the user re-includes one of them.
		GitignoreLines: []string{"*.log"},
		Extra:          []string{"!important.log"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if resolver.Decide("important.log", false) {
		t.Error("a later layer's negation must override an earlier exclusion")
	}
	if !resolver.Decide("debug.log", false) {
		t.Error("debug.log should remain ignored")
	}
}

func TestDecideBuiltinDefaults(t *testing.T) {
	resolver, err := Build(Sources{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !resolver.Decide(".git", true) {
		t.Error(".git directory should be ignored by defaults")
	}
	if !resolver.Decide("tool.exe", false) {
		t.Error("*.exe should be ignored by defaults")
	}
	if resolver.Decide("README.md", false) {
		t.Error("README.md should not be ignored")
	}
}

func TestDecideNeverIgnoresRoot(t *testing.T) {
	resolver, err := Build(Sources{Extra: []string{"*"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if resolver.Decide(".", true) || resolver.Decide("", true) {
		t.Error("the root itself must never be ignored")
	}
}

func TestPresetPython(t *testing.T) {
	resolver, err := Build(Sources{Defaults: []string{}, Preset: "python"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !resolver.Decide("__pycache__", true) {
		t.Error("__pycache__ should be ignored by the python preset")
	}
	if !resolver.Decide("pkg/mod.pyc", false) {
		t.Error("*.py[cod] should ignore compiled modules at any depth")
	}
	if resolver.Decide("main.py", false) {
		t.Error("main.py should survive the python preset")
	}
}

func TestUnknownPresetIsError(t *testing.T) {
	_, err := Build(Sources{Preset: "ruby-on-rails"})
	if err == nil {
		t.Fatal("unknown preset must be a configuration error")
	}
	if !strings.Contains(err.Error(), "ruby-on-rails") {
		t.Errorf("error should name the unknown preset: %v", err)
	}
}

func TestPresetNameIsCaseInsensitive(t *testing.T) {
	if _, err := Build(Sources{Preset: "Python"}); err != nil {
		t.Errorf("preset lookup should be case-insensitive: %v", err)
	}
}

func TestLoadGitignoreFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	content := "build/\n# comment\n\n!keep.log\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := LoadGitignoreFile(path, false)
	if err != nil {
		t.Fatalf("LoadGitignoreFile: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected raw lines preserved, got %d: %q", len(lines), lines)
	}

	// Missing files are fine when discovery is best-effort.
	lines, err = LoadGitignoreFile(filepath.Join(dir, "absent"), false)
	if err != nil || lines != nil {
		t.Errorf("missing discovered file: got lines=%v err=%v", lines, err)
	}

	// An explicitly configured file must exist.
	if _, err := LoadGitignoreFile(filepath.Join(dir, "absent"), true); err == nil {
		t.Error("missing explicit gitignore file must be an error")
	}
}
