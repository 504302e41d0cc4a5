// Package modpath resolves a dotted Nova module name (e.g. "net.http") to
// an absolute directory, per spec §4.1.
package modpath

import (
	"os"
	"path/filepath"
	"strings"

	"novac/internal/diag"
	"novac/internal/srcfilter"
)

// CacheDirName is the name of the per-user module cache directory.
const CacheDirName = ".novamodules"

// Resolver resolves dotted module names to directories using, in order: a
// path relative to the current compilation unit's directory, the stdlib
// root, and the user module cache.
type Resolver struct {
	// CurrentDir is the directory of the file/package currently being
	// compiled; strategy (a) resolves relative to it.
	CurrentDir string

	// StdlibRoot is `<executable-dir>/stdlib`.
	StdlibRoot string

	// UserCacheDir is `~/.novamodules/`, overridable for tests.
	UserCacheDir string
}

// NewResolver creates a Resolver with the user cache directory computed
// from the current user's home directory.
func NewResolver(currentDir, stdlibRoot string) *Resolver {
	home, err := os.UserHomeDir()
	cacheDir := CacheDirName
	if err == nil {
		cacheDir = filepath.Join(home, CacheDirName)
	}

	return &Resolver{
		CurrentDir:   currentDir,
		StdlibRoot:   stdlibRoot,
		UserCacheDir: cacheDir,
	}
}

// dottedToRelPath converts a dotted module name into a relative filesystem
// path: dots map to path separators.
func dottedToRelPath(moduleName string) string {
	return filepath.Join(strings.Split(moduleName, ".")...)
}

// Resolve finds the absolute directory for moduleName, trying each
// candidate strategy in order and requiring that the winning directory
// contain at least one Nova source file.
func (r *Resolver) Resolve(moduleName string) (string, error) {
	relPath := dottedToRelPath(moduleName)

	candidates := []string{
		filepath.Join(r.CurrentDir, relPath),
		filepath.Join(r.StdlibRoot, relPath),
		filepath.Join(r.UserCacheDir, relPath),
	}

	for _, dir := range candidates {
		if containsSource(dir) {
			return dir, nil
		}
	}

	return "", diag.New(diag.KindModuleNotFound, "no module named `%s` found (searched %d candidate directories)", moduleName, len(candidates))
}

// containsSource reports whether dir exists and contains at least one file
// with a Nova source/header extension (platform filtering does not apply
// here — we only need to know the module *exists*, not which of its files
// will ultimately be compiled).
func containsSource(dir string) bool {
	finfo, err := os.Stat(dir)
	if err != nil || !finfo.IsDir() {
		return false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		ext := filepath.Ext(e.Name())
		if ext == srcfilter.SourceExt || ext == srcfilter.HeaderExt {
			return true
		}
	}

	return false
}
