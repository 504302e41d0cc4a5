// Package flagdirective scans a single source line for a `#flag` directive:
// `#flag <os?> <kind> <value>`, where kind is one of -l, -I, -L, or a raw
// passthrough flag. It is a hand-rolled, token-at-a-time scanner rather than
// a regex, matching the teacher's own lexer style.
package flagdirective

import (
	"strings"

	"novac/internal/diag"
)

// FlagDirective is a parsed `#flag <os?> <kind> <value>` source directive.
type FlagDirective struct {
	OS    string // empty means "applies to every target"
	Kind  string // one of "-l", "-I", "-L", "raw"
	Value string
}

var knownOSNames = map[string]bool{
	"mac": true, "linux": true, "windows": true, "freebsd": true,
	"openbsd": true, "netbsd": true, "dragonfly": true, "msvc": true, "js": true,
}

var knownKinds = map[string]bool{
	"-l": true, "-I": true, "-L": true, "raw": true,
}

// Parse parses the body of a `#flag` directive (the text following the
// `#flag` token, already trimmed of leading/trailing whitespace) into a
// FlagDirective. It returns an error if the directive is malformed:
// missing kind, missing value, or an unrecognized kind.
func Parse(file string, line int, body string) (*FlagDirective, error) {
	fields := tokenize(body)

	if len(fields) == 0 {
		return nil, diag.NewAt(diag.KindInvalidFlag, file, &diag.Position{StartLn: line, EndLn: line}, "empty #flag directive")
	}

	fd := &FlagDirective{}

	i := 0
	if knownOSNames[fields[0]] {
		fd.OS = fields[0]
		i++
	}

	if i >= len(fields) {
		return nil, diag.NewAt(diag.KindInvalidFlag, file, &diag.Position{StartLn: line, EndLn: line}, "#flag directive is missing a kind")
	}

	kind := fields[i]
	if !knownKinds[kind] {
		return nil, diag.NewAt(diag.KindInvalidFlag, file, &diag.Position{StartLn: line, EndLn: line}, "unknown #flag kind: %s", kind)
	}
	fd.Kind = kind
	i++

	if i >= len(fields) {
		return nil, diag.NewAt(diag.KindInvalidFlag, file, &diag.Position{StartLn: line, EndLn: line}, "#flag directive is missing a value")
	}

	fd.Value = strings.Join(fields[i:], " ")

	return fd, nil
}

// tokenize splits on runs of whitespace without relying on regexp, matching
// the teacher's token-scanner idiom elsewhere in the codebase.
func tokenize(s string) []string {
	var fields []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		if r == ' ' || r == '\t' {
			flush()
		} else {
			cur.WriteRune(r)
		}
	}
	flush()

	return fields
}

// AppliesToTarget reports whether a directive applies to the given target
// OS name (the zero-value empty OS field applies to every target).
func AppliesToTarget(fd *FlagDirective, targetOS string) bool {
	return fd.OS == "" || fd.OS == targetOS
}
