// Package cc implements CCInvoker and the Unix half of ToolchainLocator:
// finding a host C compiler, building its argv from Preferences/#flag
// directives, and running it, per spec.md §4.9/§4.10.
package cc

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"novac/internal/diag"
	"novac/internal/flagdirective"
	"novac/internal/prefs"
	"novac/internal/wintool"
)

// defaultWindowsLibs is linked in on every MSVC build, matching the
// teacher's `linkExecutable`'s fixed "Requires System Libraries" list.
var defaultWindowsLibs = []string{
	"kernel32.lib",
	"user32.lib",
	"gdi32.lib",
	"advapi32.lib",
	"shell32.lib",
	"ole32.lib",
	"oleaut32.lib",
	"uuid.lib",
	"odbc32.lib",
	"odbccp32.lib",
	"winspool.lib",
	"comdlg32.lib",
}

// LocateUnix probes $CC, then cc, gcc, clang in turn, returning the first
// one found on $PATH.
func LocateUnix(explicit string) (string, error) {
	candidates := []string{explicit, os.Getenv("CC"), "cc", "gcc", "clang"}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}

	return "", diag.New(diag.KindToolchainNotFound, "no C compiler found ($CC, cc, gcc, clang all unavailable)")
}

// Invoker builds and runs the host C compiler invocation for a single
// generated translation unit.
type Invoker struct {
	Prefs *prefs.Preferences
}

// New creates an Invoker.
func New(p *prefs.Preferences) *Invoker {
	return &Invoker{Prefs: p}
}

// Compile compiles cFile into the build's final output, honoring
// Preferences.CFlags and the accumulated `#flag` directives. It dispatches
// to the MSVC or Unix-style argv construction based on the target OS.
func (inv *Invoker) Compile(cFile string, flags []*flagdirective.FlagDirective) error {
	if inv.Prefs.TargetOS == prefs.OSMSVC {
		return inv.compileMSVC(cFile, flags)
	}
	return inv.compileUnix(cFile, flags)
}

func (inv *Invoker) compileUnix(cFile string, flags []*flagdirective.FlagDirective) error {
	ccPath, err := LocateUnix(inv.Prefs.CCompiler)
	if err != nil {
		return err
	}

	args := []string{cFile, "-o", inv.Prefs.OutNameForTarget()}

	if inv.Prefs.BuildMode == prefs.ModeBuildModule {
		args = append(args, "-c")
	} else if inv.Prefs.IsSO {
		args = append(args, "-shared", "-fPIC")
	}
	if inv.Prefs.IsDebug {
		args = append(args, "-g")
	}
	if inv.Prefs.IsProd {
		args = append(args, "-O2")
	}
	if inv.Prefs.Sanitize {
		args = append(args, "-fsanitize=address,undefined")
	}

	if inv.Prefs.CFlags != "" {
		args = append(args, strings.Fields(inv.Prefs.CFlags)...)
	}

	targetName := inv.Prefs.TargetOS.String()
	for _, fd := range flags {
		if !flagdirective.AppliesToTarget(fd, targetName) {
			continue
		}

		switch fd.Kind {
		case "-l":
			args = append(args, "-l"+fd.Value)
		case "-I":
			args = append(args, "-I"+fd.Value)
		case "-L":
			args = append(args, "-L"+fd.Value)
		case "raw":
			args = append(args, fd.Value)
		}
	}

	cmd := exec.Command(ccPath, args...)
	if inv.Prefs.ShowCCmd {
		os.Stderr.WriteString(cmd.String() + "\n")
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return diag.NewCompileFailure(string(out))
		}
		return diag.New(diag.KindToolchainNotFound, "failed to run %s: %s", ccPath, err.Error())
	}

	return nil
}

func (inv *Invoker) compileMSVC(cFile string, flags []*flagdirective.FlagDirective) error {
	if runtime.GOOS != "windows" {
		return diag.New(diag.KindToolchainNotFound, "MSVC target requested on a non-Windows host")
	}

	tc, err := wintool.FindMSVC("x86_64")
	if err != nil {
		return diag.New(diag.KindToolchainNotFound, "unable to locate MSVC toolchain: %s", err.Error())
	}

	args, err := buildMSVCArgs(cFile, flags, inv.Prefs)
	if err != nil {
		return err
	}

	cmd := tc.Command(args...)
	if inv.Prefs.ShowCCmd {
		os.Stderr.WriteString(cmd.String() + "\n")
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return diag.NewCompileFailure(string(out))
		}
		return diag.New(diag.KindToolchainNotFound, "failed to run %s: %s", tc.ClPath, err.Error())
	}

	return nil
}

// buildMSVCArgs assembles the cl.exe argv for a single translation unit.
// Library names derived from `#flag -l` directives and the fixed default
// library list are placed as plain input files ahead of the `/link`
// boundary; `/LIBPATH:`/raw linker flags go after it, per spec.md §4.10's
// MSVC rewrite rule (S6). For `build module`, `/c` compiles to an object
// file and the link boundary/default libraries are omitted entirely, since
// no linking happens.
func buildMSVCArgs(cFile string, flags []*flagdirective.FlagDirective, p *prefs.Preferences) ([]string, error) {
	args := []string{"/nologo", cFile}

	if p.BuildMode == prefs.ModeBuildModule {
		args = append(args, "/c", "/Fo:"+rewriteObjExt(p.OutNameForTarget()))
	} else {
		if p.IsSO {
			args = append(args, "/LD")
		}
		args = append(args, "/Fe:"+p.OutNameForTarget())
	}

	if p.IsDebug {
		args = append(args, "/Zi")
	}
	if p.IsProd {
		args = append(args, "/O2")
	}

	if p.CFlags != "" {
		for _, tok := range strings.Fields(p.CFlags) {
			args = append(args, rewriteObjExt(tok))
		}
	}

	var linkArgs []string
	if p.BuildMode != prefs.ModeBuildModule {
		linkArgs = []string{"/link"}
	}

	targetName := p.TargetOS.String()
	for _, fd := range flags {
		if !flagdirective.AppliesToTarget(fd, targetName) {
			continue
		}

		switch fd.Kind {
		case "-l":
			if strings.HasSuffix(strings.ToLower(fd.Value), ".dll") {
				return nil, diag.New(diag.KindUnsupportedLinkDirective, "MSVC target cannot link a .dll directly: `%s`", fd.Value)
			}
			args = append(args, rewriteLibName(fd.Value))
		case "-I":
			args = append(args, `/I"`+fd.Value+`"`)
		case "-L":
			if linkArgs == nil {
				continue
			}
			linkArgs = append(linkArgs, `/LIBPATH:"`+fd.Value+`"`)
			linkArgs = append(linkArgs, `/LIBPATH:"`+strings.TrimRight(fd.Value, `\`)+`\msvc\"`)
		case "raw":
			if linkArgs == nil {
				continue
			}
			linkArgs = append(linkArgs, rewriteObjExt(fd.Value))
		}
	}

	if linkArgs != nil {
		args = append(args, defaultWindowsLibs...)
		args = append(args, linkArgs...)
	}

	return args, nil
}

// rewriteObjExt rewrites a standalone `.o` filename reference (from cflags
// or a raw `#flag` directive) into the `.obj` form MSVC expects.
func rewriteObjExt(tok string) string {
	if strings.HasSuffix(strings.ToLower(tok), ".o") {
		return tok[:len(tok)-len(".o")] + ".obj"
	}
	return tok
}

// rewriteLibName turns a bare library name from a `#flag -l` directive into
// the `.lib`/`.obj` form MSVC expects as a default-library argument.
func rewriteLibName(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".lib") || strings.HasSuffix(lower, ".obj") {
		return name
	}
	return name + ".lib"
}
