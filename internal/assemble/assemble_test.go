package assemble

import (
	"os"
	"path/filepath"
	"testing"

	"novac/internal/modpath"
	"novac/internal/parser"
	"novac/internal/prefs"
)

func mustWrite(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write fixture file %q: %v", path, err)
	}
}

// newFixture builds a stdlib root with a builtin module and a net.http
// module, plus a user project importing net.http, and returns the
// Assembler wired against it.
func newFixture(t *testing.T) (*Assembler, string) {
	t.Helper()
	root := t.TempDir()

	stdlib := filepath.Join(root, "stdlib")
	mustWrite(t, filepath.Join(stdlib, "builtin", "core.nv"), "pub func builtin_noop() {\n}\n")
	mustWrite(t, filepath.Join(stdlib, "net", "http", "http.nv"), "pub func get() {\n}\n")

	proj := filepath.Join(root, "proj")
	mustWrite(t, filepath.Join(proj, "main.nv"), "import net.http\n\npub func main() {\n}\n")

	p := &prefs.Preferences{TargetOS: prefs.OSLinux, StdlibRoot: stdlib, Dir: proj}
	resolver := &modpath.Resolver{CurrentDir: proj, StdlibRoot: stdlib, UserCacheDir: filepath.Join(root, "nonexistent-cache")}
	par := parser.NewSourceParser()

	return New(p, resolver, par), proj
}

func TestAssembleOrdersBuiltinImportsThenUser(t *testing.T) {
	a, proj := newFixture(t)

	result, err := a.Assemble(proj, "main")
	if err != nil {
		t.Fatalf("Assemble returned unexpected error: %v", err)
	}

	if len(result.Files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(result.Files), result.Files)
	}

	basenames := make([]string, len(result.Files))
	for i, f := range result.Files {
		basenames[i] = filepath.Base(f)
	}

	pos := func(name string) int {
		for i, b := range basenames {
			if b == name {
				return i
			}
		}
		t.Fatalf("expected %q among assembled files, got %v", name, basenames)
		return -1
	}

	builtinPos := pos("core.nv")
	httpPos := pos("http.nv")
	mainPos := pos("main.nv")

	if builtinPos > httpPos || httpPos > mainPos {
		t.Errorf("expected order builtin < net.http < main, got %v", basenames)
	}
}

func TestAssembleFailsOnEmptyDirectory(t *testing.T) {
	a, proj := newFixture(t)

	empty := filepath.Join(proj, "..", "empty")
	if err := os.MkdirAll(empty, 0755); err != nil {
		t.Fatalf("failed to create empty dir: %v", err)
	}

	if _, err := a.Assemble(empty, "main"); err == nil {
		t.Fatal("expected an error assembling an empty directory")
	}
}

func TestAssembleFailsOnMissingPath(t *testing.T) {
	a, proj := newFixture(t)

	if _, err := a.Assemble(filepath.Join(proj, "does-not-exist.nv"), "main"); err == nil {
		t.Fatal("expected an error for a nonexistent start path")
	}
}

func TestAssembleDeduplicatesFiles(t *testing.T) {
	a, proj := newFixture(t)

	result, err := a.Assemble(proj, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{}
	for _, f := range result.Files {
		if seen[f] {
			t.Fatalf("file %q appeared more than once in %v", f, result.Files)
		}
		seen[f] = true
	}
}
