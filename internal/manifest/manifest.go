// Package manifest loads and validates a Nova module's `nova.mod` file.
package manifest

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"unicode"

	"github.com/pelletier/go-toml"

	"novac/internal/diag"
)

// FileName is the name of a Nova module's manifest file.
const FileName = "nova.mod"

// CompilerVersion is novac's own version, compared against a manifest's
// declared `nova-version` to warn about mismatches.
const CompilerVersion = "0.1.0"

// tomlManifest mirrors the on-disk TOML schema.
type tomlManifest struct {
	Name        string `toml:"name"`
	ShouldCache bool   `toml:"caching"`
	NovaVersion string `toml:"nova-version"`
}

// Manifest is the in-memory, validated form of a module's `nova.mod`.
type Manifest struct {
	Name        string
	ShouldCache bool
	AbsPath     string
}

// Load reads and validates the manifest at the root of the module directory
// `absPath`. It reports a fatal diagnostic through rep on I/O or parse
// failure, and a non-fatal warning (not an error) when the declared
// nova-version doesn't match this compiler's version — mirroring the
// teacher's validateModule behavior of warning rather than failing on a
// version skew.
func Load(rep *diag.Reporter, absPath string) (*Manifest, bool) {
	path := filepath.Join(absPath, FileName)

	f, err := os.Open(path)
	if err != nil {
		rep.Report(diag.New(diag.KindModuleNotFound, "unable to open module file at `%s`: %s", path, err.Error()))
		return nil, false
	}
	defer f.Close()

	buf, err := ioutil.ReadAll(f)
	if err != nil {
		rep.Report(diag.New(diag.KindModuleNotFound, "error reading module file at `%s`: %s", path, err.Error()))
		return nil, false
	}

	tm := &tomlManifest{}
	if err := toml.Unmarshal(buf, tm); err != nil {
		rep.Report(diag.New(diag.KindModuleNotFound, "error parsing module file at `%s`: %s", path, err.Error()))
		return nil, false
	}

	m := &Manifest{AbsPath: absPath}

	if !validate(rep, m, tm) {
		return nil, false
	}

	return m, true
}

// validate checks the manifest's contents and copies valid fields onto m.
func validate(rep *diag.Reporter, m *Manifest, tm *tomlManifest) bool {
	if tm.Name == "" {
		rep.Report(diag.New(diag.KindModuleNotFound, "module file at `%s` is missing a name", m.AbsPath))
		return false
	}

	if !isValidIdentifier(tm.Name) {
		rep.Report(diag.New(diag.KindModuleNotFound, "module name `%s` must be a valid identifier", tm.Name))
		return false
	}

	if tm.NovaVersion != "" && tm.NovaVersion != CompilerVersion {
		rep.Warn(fmt.Sprintf(
			"module `%s` declares nova-version %s, which does not match the current compiler version %s",
			tm.Name, tm.NovaVersion, CompilerVersion,
		))
	}

	m.Name = tm.Name
	m.ShouldCache = tm.ShouldCache

	return true
}

func isValidIdentifier(name string) bool {
	for i, c := range name {
		if i == 0 {
			if !(unicode.IsLetter(c) || c == '_') {
				return false
			}
		} else if !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_') {
			return false
		}
	}

	return len(name) > 0
}
