// Package prefs holds the compiler's build configuration, filled in from
// command-line arguments and environment variables and then threaded into
// every other component for the lifetime of the process.
package prefs

// BuildMode enumerates the top-level build modes a Preferences value can
// select.
type BuildMode int

const (
	ModeDefault BuildMode = iota
	ModeEmbedStdlib
	ModeBuildModule
)

// TargetOS enumerates the supported compilation targets.
type TargetOS int

const (
	OSMac TargetOS = iota
	OSLinux
	OSWindows
	OSFreeBSD
	OSOpenBSD
	OSNetBSD
	OSDragonfly
	OSMSVC
	OSJS
)

// String renders the target OS the way it is matched against file suffixes
// and `#flag` directives.
func (t TargetOS) String() string {
	switch t {
	case OSMac:
		return "mac"
	case OSLinux:
		return "linux"
	case OSWindows:
		return "windows"
	case OSFreeBSD:
		return "freebsd"
	case OSOpenBSD:
		return "openbsd"
	case OSNetBSD:
		return "netbsd"
	case OSDragonfly:
		return "dragonfly"
	case OSMSVC:
		return "msvc"
	case OSJS:
		return "js"
	default:
		return "unknown"
	}
}

// ParseTargetOS parses a target OS name as accepted by `-os`.
func ParseTargetOS(name string) (TargetOS, bool) {
	switch name {
	case "mac", "macos", "darwin":
		return OSMac, true
	case "linux":
		return OSLinux, true
	case "windows":
		return OSWindows, true
	case "freebsd":
		return OSFreeBSD, true
	case "openbsd":
		return OSOpenBSD, true
	case "netbsd":
		return OSNetBSD, true
	case "dragonfly":
		return OSDragonfly, true
	case "msvc":
		return OSMSVC, true
	case "js":
		return OSJS, true
	default:
		return 0, false
	}
}

// IsWindowsFamily reports whether the target OS is Windows or MSVC: both
// select Windows platform-suffixed source files (§4.2).
func (t TargetOS) IsWindowsFamily() bool {
	return t == OSWindows || t == OSMSVC
}

// Preferences is the compiler's build configuration. It is built by the CLI
// layer (internal/cli); cmd/novac's compile then sets OutName (for `build
// module`), ModuleName, Dir and IsScript before the pipeline starts, and
// the pipeline components only read it.
type Preferences struct {
	BuildMode BuildMode
	TargetOS  TargetOS

	IsTest       bool
	IsScript     bool
	IsLive       bool
	IsSO         bool
	IsProf       bool
	IsProd       bool
	IsDebug      bool
	IsVerbose    bool
	Sanitize     bool
	Obfuscate    bool
	Translated   bool
	Autofree     bool
	BuildingSelf bool
	ShowCCmd     bool
	Compress     bool
	NoFmt        bool

	CFlags     string
	CCompiler  string
	OutName    string
	OutNameC   string
	Dir        string
	ModuleName string
	StdlibRoot string
}

// Default returns a Preferences value with the compiler's documented
// defaults: default build mode, host target OS, no special flags.
func Default(hostOS TargetOS, stdlibRoot string) Preferences {
	return Preferences{
		BuildMode:  ModeDefault,
		TargetOS:   hostOS,
		StdlibRoot: stdlibRoot,
	}
}

// OutNameForTarget derives the final output name, appending the
// platform-appropriate extension (`.exe` on Windows, `.so`/`.dll` for
// shared-object builds) if the user didn't already supply one.
//
// For `build module`, the output is always `<module>.o`: an object file
// named after the module being built, regardless of -outpath (spec.md §8,
// S4). The caller is expected to have set OutName to the bare module name
// in that mode (see cmd/novac's compile).
func (p *Preferences) OutNameForTarget() string {
	if p.BuildMode == ModeBuildModule {
		name := p.OutName
		if name == "" {
			name = "out"
		}
		if hasSuffix(name, ".o") {
			return name
		}
		return name + ".o"
	}

	name := p.OutName
	if name == "" {
		name = "out"
	}

	if p.IsSO {
		if p.TargetOS.IsWindowsFamily() {
			if hasSuffix(name, ".dll") {
				return name
			}
			return name + ".dll"
		}

		if hasSuffix(name, ".so") {
			return name
		}
		return name + ".so"
	}

	if p.TargetOS.IsWindowsFamily() && !hasSuffix(name, ".exe") {
		return name + ".exe"
	}

	return name
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
