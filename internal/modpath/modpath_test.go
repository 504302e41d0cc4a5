package modpath

import (
	"os"
	"path/filepath"
	"testing"

	"novac/internal/diag"
)

func mkModule(t *testing.T, root, relDir, fileName string) {
	t.Helper()
	dir := filepath.Join(root, relDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(""), 0644); err != nil {
		t.Fatalf("failed to write fixture file: %v", err)
	}
}

func TestResolveFindsModuleRelativeToCurrentDir(t *testing.T) {
	root := t.TempDir()
	current := filepath.Join(root, "proj")
	mkModule(t, current, "widgets", "widgets.nv")

	r := &Resolver{CurrentDir: current, StdlibRoot: filepath.Join(root, "stdlib"), UserCacheDir: filepath.Join(root, "cache")}

	dir, err := r.Resolve("widgets")
	if err != nil {
		t.Fatalf("Resolve returned unexpected error: %v", err)
	}
	if dir != filepath.Join(current, "widgets") {
		t.Errorf("Resolve(\"widgets\") = %q; want %q", dir, filepath.Join(current, "widgets"))
	}
}

func TestResolveFallsBackToStdlibRoot(t *testing.T) {
	root := t.TempDir()
	current := filepath.Join(root, "proj")
	stdlib := filepath.Join(root, "stdlib")
	mkModule(t, stdlib, "net/http", "http.nv")

	r := &Resolver{CurrentDir: current, StdlibRoot: stdlib, UserCacheDir: filepath.Join(root, "cache")}

	dir, err := r.Resolve("net.http")
	if err != nil {
		t.Fatalf("Resolve returned unexpected error: %v", err)
	}
	if dir != filepath.Join(stdlib, "net", "http") {
		t.Errorf("Resolve(\"net.http\") = %q; want %q", dir, filepath.Join(stdlib, "net", "http"))
	}
}

func TestResolveFallsBackToUserCache(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(root, "cache")
	mkModule(t, cache, "acme/widgets", "widgets.nv")

	r := &Resolver{CurrentDir: filepath.Join(root, "proj"), StdlibRoot: filepath.Join(root, "stdlib"), UserCacheDir: cache}

	dir, err := r.Resolve("acme.widgets")
	if err != nil {
		t.Fatalf("Resolve returned unexpected error: %v", err)
	}
	if dir != filepath.Join(cache, "acme", "widgets") {
		t.Errorf("Resolve(\"acme.widgets\") = %q; want %q", dir, filepath.Join(cache, "acme", "widgets"))
	}
}

func TestResolveFailsWhenNoCandidateExists(t *testing.T) {
	root := t.TempDir()
	r := &Resolver{CurrentDir: filepath.Join(root, "proj"), StdlibRoot: filepath.Join(root, "stdlib"), UserCacheDir: filepath.Join(root, "cache")}

	_, err := r.Resolve("missing.module")
	if err == nil {
		t.Fatal("expected an error for an unresolvable module")
	}

	cerr, ok := err.(*diag.CompileError)
	if !ok || cerr.Kind != diag.KindModuleNotFound {
		t.Errorf("expected KindModuleNotFound, got %v", err)
	}
}

func TestResolvePrefersCurrentDirOverStdlib(t *testing.T) {
	root := t.TempDir()
	current := filepath.Join(root, "proj")
	stdlib := filepath.Join(root, "stdlib")
	mkModule(t, current, "widgets", "local.nv")
	mkModule(t, stdlib, "widgets", "stdlib.nv")

	r := &Resolver{CurrentDir: current, StdlibRoot: stdlib, UserCacheDir: filepath.Join(root, "cache")}

	dir, err := r.Resolve("widgets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != filepath.Join(current, "widgets") {
		t.Errorf("Resolve should prefer CurrentDir over StdlibRoot, got %q", dir)
	}
}

func TestNewResolverPopulatesUserCacheDir(t *testing.T) {
	r := NewResolver(".", "stdlib")
	if r.UserCacheDir == "" {
		t.Error("expected NewResolver to populate a non-empty UserCacheDir")
	}
}
