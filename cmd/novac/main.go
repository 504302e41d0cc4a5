// Command novac is the Nova compiler driver: it wires together module
// resolution, file discovery, the imports/decl/main pass driver, C code
// generation, and the host toolchain invocation described in DESIGN.md.
package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"novac/internal/assemble"
	"novac/internal/cc"
	"novac/internal/cgen"
	"novac/internal/cli"
	"novac/internal/diag"
	"novac/internal/hotreload"
	"novac/internal/mainemit"
	"novac/internal/manifest"
	"novac/internal/modpath"
	"novac/internal/parser"
	"novac/internal/passdrv"
	"novac/internal/prefs"
	"novac/internal/symtab"
)

func main() {
	os.Exit(run())
}

func run() int {
	inv := cli.Parse()

	switch inv.Verb {
	case "run", "test", "build":
		return compile(inv)
	case "install":
		return installModule(inv)
	case "fmt":
		return formatSource(inv)
	case "symlink":
		return symlinkSelf()
	case "up":
		return selfUpdate()
	default:
		return 0
	}
}

func reporterFor(p *prefs.Preferences) *diag.Reporter {
	level := diag.LogLevelWarn
	if p.IsVerbose {
		level = diag.LogLevelVerbose
	}
	return diag.NewReporter(level)
}

// compile runs the full build pipeline for `run`/`test`/`build`, emitting
// the generated C file and, unless the host toolchain fails, invoking it.
// `run` additionally executes the result and forwards its exit status.
func compile(inv *cli.Invocation) int {
	rep := reporterFor(&inv.Prefs)

	startPath := inv.Path
	if inv.Prefs.BuildMode == prefs.ModeBuildModule {
		startPath = inv.ModulePath
		inv.Prefs.OutName = strings.TrimSuffix(filepath.Base(startPath), filepath.Ext(startPath))
	}
	if startPath == "" {
		startPath = "."
	}

	absPath, err := filepath.Abs(startPath)
	if err != nil {
		rep.Fatal(diag.New(diag.KindPathNotFound, "%s", err.Error()))
	}

	moduleName, moduleDir, isScript := resolveModuleName(rep, absPath)
	inv.Prefs.ModuleName = moduleName
	inv.Prefs.Dir = moduleDir
	inv.Prefs.IsScript = isScript

	rep.Header(inv.Prefs.TargetOS.String(), false)

	resolver := modpath.NewResolver(moduleDir, inv.Prefs.StdlibRoot)
	par := parser.NewSourceParser()
	asm := assemble.New(&inv.Prefs, resolver, par)

	result, cerr := asm.Assemble(absPath, moduleName)
	if cerr != nil {
		rep.Fatal(cerr.(*diag.CompileError))
	}
	rep.PhaseDone("assemble")

	st := symtab.New()
	sink := cgen.New()
	driver := passdrv.New(&inv.Prefs, sink, st, par)

	driver.RegisterImports(result.FileImports)

	if err := driver.RunDecl(result.Files); err != nil {
		rep.Fatal(err.(*diag.CompileError))
	}
	rep.PhaseDone("decl")

	if err := sink.SetReservedSlot(platformHeaders(&inv.Prefs)); err != nil {
		rep.Fatal(err.(*diag.CompileError))
	}

	hr := hotreload.New(&inv.Prefs, sink)
	hr.Emit(inv.Prefs.OutNameForTarget())

	me := mainemit.New(&inv.Prefs, sink, st)
	me.EmitStringHelpers()
	me.EmitInitConsts([]string{moduleName})

	if err := driver.RunMain(result.Files); err != nil {
		rep.Fatal(err.(*diag.CompileError))
	}

	if err := me.EmitMain(moduleName); err != nil {
		rep.Fatal(err.(*diag.CompileError))
	}
	rep.PhaseDone("main")

	cOutPath := inv.Prefs.OutNameForTarget() + ".c"
	if err := sink.Save(cOutPath); err != nil {
		rep.Fatal(err.(*diag.CompileError))
	}

	if inv.Prefs.IsLive && !inv.Prefs.IsSO {
		exe, err := os.Executable()
		if err != nil {
			rep.Fatal(diag.New(diag.KindCompileFailure, "unable to locate the running novac binary: %s", err.Error()))
		}

		if err := hotreload.BuildInitial(exe, os.Args[1:]); err != nil {
			rep.Fatal(err.(*diag.CompileError))
		}
	}

	invoker := cc.New(&inv.Prefs)
	if err := invoker.Compile(cOutPath, result.Flags); err != nil {
		rep.Fatal(err.(*diag.CompileError))
	}

	rep.Finished(inv.Prefs.OutNameForTarget())

	if inv.Verb == "run" {
		return runCompiled(&inv.Prefs)
	}

	return 0
}

func runCompiled(p *prefs.Preferences) int {
	outPath := p.OutNameForTarget()
	if !filepath.IsAbs(outPath) {
		outPath = "./" + outPath
	}

	cmd := exec.Command(outPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		diag.NewReporter(diag.LogLevelError).Fatal(diag.New(diag.KindCompileFailure, "failed to run compiled program: %s", err.Error()))
	}

	return 0
}

// resolveModuleName determines the module this build belongs to: a
// `nova.mod` next to the build root names it; otherwise the module is
// named "main". Script mode is set only when there is no usable `nova.mod`
// and the build root is a single file, not a directory.
func resolveModuleName(rep *diag.Reporter, absPath string) (moduleName, moduleDir string, isScript bool) {
	dir := absPath
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(absPath)
		isScript = true
	}

	if _, err := os.Stat(filepath.Join(dir, manifest.FileName)); err == nil {
		if m, ok := manifest.Load(rep, dir); ok {
			return m.Name, dir, false
		}
	}

	return "main", dir, isScript
}

// platformHeaders builds the reserved-slot content that compile writes into
// the sink after the decl pass: the includes every generated translation unit needs, with
// the POSIX/Windows split spec.md §4.8 requires for the hot-reload shim.
func platformHeaders(p *prefs.Preferences) string {
	var b strings.Builder

	b.WriteString("#include <stdio.h>\n")
	b.WriteString("#include <stdlib.h>\n")
	b.WriteString("#include <string.h>\n")
	b.WriteString("#include <stdarg.h>\n")
	b.WriteString("#include <time.h>\n")

	if p.TargetOS.IsWindowsFamily() {
		b.WriteString("#include <windows.h>\n")
	} else {
		b.WriteString("#include <pthread.h>\n")
		b.WriteString("#include <dlfcn.h>\n")
		b.WriteString("#include <unistd.h>\n")
		b.WriteString("#include <sys/stat.h>\n")
	}

	return b.String()
}

func installModule(inv *cli.Invocation) int {
	rep := diag.NewReporter(diag.LogLevelVerbose)

	if inv.ModulePath == "" {
		rep.Fatal(diag.New(diag.KindModuleNotFound, "install requires a module name"))
	}

	resolver := modpath.NewResolver(".", prefsStdlibRoot())
	if _, err := resolver.Resolve(inv.ModulePath); err != nil {
		rep.Fatal(err.(*diag.CompileError))
	}

	return 0
}

func formatSource(inv *cli.Invocation) int {
	// The formatter itself is out of scope for this driver; `fmt` exits 0
	// so build scripts that unconditionally call it don't break.
	return 0
}

func symlinkSelf() int {
	exe, err := os.Executable()
	if err != nil {
		diag.NewReporter(diag.LogLevelError).Fatal(diag.New(diag.KindPathNotFound, "unable to locate the running novac binary: %s", err.Error()))
	}

	for _, dir := range strings.Split(os.Getenv("PATH"), string(os.PathListSeparator)) {
		target := filepath.Join(dir, filepath.Base(exe))
		if err := os.Symlink(exe, target); err == nil {
			return 0
		}
	}

	diag.NewReporter(diag.LogLevelError).Fatal(diag.New(diag.KindPathNotFound, "no writable directory found on $PATH"))
	return 1
}

func selfUpdate() int {
	// Self-update requires a release channel this repository doesn't model;
	// a real implementation would fetch and verify a new binary here.
	return 0
}

func prefsStdlibRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "stdlib"
	}
	return filepath.Join(filepath.Dir(exe), "stdlib")
}
