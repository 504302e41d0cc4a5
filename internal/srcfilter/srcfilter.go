// Package srcfilter enumerates Nova source files in a directory, applying
// the platform-suffix and test-suffix exclusion rules of spec §4.2.
package srcfilter

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"novac/internal/prefs"
	"novac/internal/util"
)

// SourceExt and HeaderExt are Nova's source and header-like file extensions.
const (
	SourceExt = ".nv"
	HeaderExt = ".nvh"
)

// platformSuffixes maps a file's trailing `_<suffix>` to the set of target
// OSes for which the file should be *included*. Apart from `_nix` and `_c`,
// which platformMatches handles separately, a suffix not present here is
// never excluded on platform grounds.
var platformSuffixes = map[string][]prefs.TargetOS{
	"_win": {prefs.OSWindows, prefs.OSMSVC},
	"_lin": {prefs.OSLinux},
	"_mac": {prefs.OSMac},
	// "_nix" is included for every target except Windows/MSVC/JS.
	"_js": {prefs.OSJS},
	// "_c" is included for every target except JS.
}

// List enumerates the eligible source files of dir, in deterministic
// lexicographic order by filename, honoring platform suffixes and (unless
// isTest) excluding `_test` files.
func List(dir string, target prefs.TargetOS, isTest bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}

	sort.Strings(names)

	var out []string
	for _, name := range names {
		if !hasSourceExt(name) {
			continue
		}

		if !isTest && isTestFile(name) {
			continue
		}

		if !platformMatches(name, target) {
			continue
		}

		out = append(out, filepath.Join(dir, name))
	}

	return out, nil
}

func hasSourceExt(name string) bool {
	ext := filepath.Ext(name)
	return ext == SourceExt || ext == HeaderExt
}

func isTestFile(name string) bool {
	base := strings.TrimSuffix(strings.TrimSuffix(name, HeaderExt), SourceExt)
	return strings.HasSuffix(base, "_test")
}

// platformMatches reports whether a file with the given name should be
// included for the given target, based on its platform suffix (if any).
func platformMatches(name string, target prefs.TargetOS) bool {
	base := strings.TrimSuffix(strings.TrimSuffix(name, HeaderExt), SourceExt)

	for suffix, oses := range platformSuffixes {
		if strings.HasSuffix(base, suffix) {
			return util.Contains(oses, target)
		}
	}

	if strings.HasSuffix(base, "_nix") {
		return !target.IsWindowsFamily() && target != prefs.OSJS
	}

	if strings.HasSuffix(base, "_c") {
		return target != prefs.OSJS
	}

	return true
}
