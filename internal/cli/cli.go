// Package cli declares novac's command-line surface (verbs, flags, and
// options) and translates a parsed command line into a prefs.Preferences
// plus the positional path argument the rest of the driver consumes.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ComedicChimera/olive"

	"novac/internal/diag"
	"novac/internal/prefs"
)

// Invocation is the result of parsing the command line: the verb the user
// invoked, the Preferences it implies, and the path argument (if any).
type Invocation struct {
	Verb string
	Prefs prefs.Preferences
	Path  string

	// ModulePath is set for `build module <path>`.
	ModulePath string
}

func hostTargetOS() prefs.TargetOS {
	switch runtime.GOOS {
	case "windows":
		return prefs.OSWindows
	case "darwin":
		return prefs.OSMac
	case "freebsd":
		return prefs.OSFreeBSD
	case "openbsd":
		return prefs.OSOpenBSD
	case "netbsd":
		return prefs.OSNetBSD
	case "dragonfly":
		return prefs.OSDragonfly
	default:
		return prefs.OSLinux
	}
}

// buildCLI declares the full olive command tree for novac, mirroring the
// verb/flag surface of spec.md §6.
func buildCLI() *olive.Command {
	c := olive.NewCLI("novac", "novac compiles Nova source into a native executable or shared library", true)

	runCmd := c.AddSubcommand("run", "compile and immediately execute a program", true)
	runCmd.AddPrimaryArg("path", "the file or directory to compile", true)
	addCommonFlags(runCmd)

	testCmd := c.AddSubcommand("test", "compile and run a package's test functions", true)
	testCmd.AddPrimaryArg("path", "the file or directory to test", true)
	addCommonFlags(testCmd)

	buildCmd := c.AddSubcommand("build", "compile a program or module without running it", true)
	buildCmd.AddPrimaryArg("path", "the file or directory to build", false)
	buildModCmd := buildCmd.AddSubcommand("module", "compile a single module to an object file", true)
	buildModCmd.AddPrimaryArg("module-path", "the path to the module to build", true)
	addCommonFlags(buildCmd)
	addCommonFlags(buildModCmd)

	installCmd := c.AddSubcommand("install", "check that a module resolves (nothing is downloaded)", true)
	installCmd.AddPrimaryArg("module", "the dotted module name to install", true)

	fmtCmd := c.AddSubcommand("fmt", "format Nova source files (advisory — exits 0 if unavailable)", true)
	fmtCmd.AddPrimaryArg("path", "the file or directory to format", true)

	c.AddSubcommand("symlink", "symlink the novac binary onto PATH", true)

	c.AddSubcommand("up", "exit 0 without updating anything", true)

	c.AddSubcommand("version", "print the compiler version", false)
	c.AddSubcommand("help", "print usage information", false)

	return c
}

// addCommonFlags declares the flags shared by run/test/build, per spec.md §6.
func addCommonFlags(cmd *olive.Command) {
	cmd.AddStringArg("outpath", "o", "output path", false)
	cmd.AddStringArg("os", "", "target operating system", false)
	cmd.AddFlag("prod", "", "build in production mode")
	cmd.AddFlag("debug", "d", "enable debug build")
	cmd.AddFlag("g", "", "alias for -debug")
	cmd.AddFlag("live", "", "enable hot code reload")
	cmd.AddFlag("shared", "", "produce a shared object/library")
	cmd.AddFlag("prof", "", "enable profiling instrumentation")
	cmd.AddFlag("obf", "", "obfuscate emitted symbol names")
	cmd.AddFlag("verbose", "v", "verbose compiler output")
	cmd.AddFlag("show_c_cmd", "", "print the host C compiler invocation")
	cmd.AddFlag("autofree", "", "enable automatic memory management")
	cmd.AddFlag("compress", "", "strip and compress the final binary")
	cmd.AddFlag("sanitize", "", "enable the host compiler's sanitizers")
	cmd.AddStringArg("cflags", "", "extra flags passed to the host C compiler", false)
	cmd.AddFlag("nofmt", "", "skip the formatter pass")
	cmd.AddFlag("repl", "", "drop into a REPL instead of compiling a file")
}

// Parse parses os.Args (with NOVAFLAGS prepended) into an Invocation. It
// exits the process directly for `version`/`help` and for argument errors,
// matching the teacher's `printUsage`/`argumentError` behavior.
func Parse() *Invocation {
	args := os.Args[1:]
	if extra := os.Getenv("NOVAFLAGS"); extra != "" {
		args = append(strings.Fields(extra), args...)
	}

	c := buildCLI()
	result, err := olive.ParseArgs(c, append([]string{"novac"}, args...))
	if err != nil {
		fmt.Println("argument error:", err.Error())
		os.Exit(1)
	}

	verb, subResult, _ := result.Subcommand()

	switch verb {
	case "version":
		fmt.Println(version())
		os.Exit(0)
	case "help", "":
		printUsage()
		os.Exit(0)
	}

	p := prefs.Default(hostTargetOS(), stdlibRoot())

	inv := &Invocation{Verb: verb, Prefs: p}

	switch verb {
	case "run":
		inv.Path, _ = subResult.PrimaryArg()
		applyCommonFlags(subResult, &inv.Prefs)
	case "test":
		inv.Path, _ = subResult.PrimaryArg()
		inv.Prefs.IsTest = true
		applyCommonFlags(subResult, &inv.Prefs)
	case "build":
		if modSub, modResult, ok := subResult.Subcommand(); ok && modSub == "module" {
			inv.ModulePath, _ = modResult.PrimaryArg()
			inv.Prefs.BuildMode = prefs.ModeBuildModule
			applyCommonFlags(modResult, &inv.Prefs)
		} else {
			inv.Path, _ = subResult.PrimaryArg()
			applyCommonFlags(subResult, &inv.Prefs)
		}
	case "install":
		inv.ModulePath, _ = subResult.PrimaryArg()
	case "fmt":
		inv.Path, _ = subResult.PrimaryArg()
	case "symlink", "up":
		// No further arguments.
	default:
		diag.NewReporter(diag.LogLevelVerbose).Fatal(diag.New(diag.KindInvalidFlag, "unknown verb: %s", verb))
	}

	return inv
}

// applyCommonFlags copies the shared run/test/build flags out of an olive
// subcommand result and into a Preferences value.
func applyCommonFlags(result *olive.ArgParseResult, p *prefs.Preferences) {
	if v, ok := result.Arguments["outpath"]; ok {
		p.OutName = v.(string)
	}
	if v, ok := result.Arguments["os"]; ok {
		if os, ok := prefs.ParseTargetOS(v.(string)); ok {
			p.TargetOS = os
		}
	}
	p.IsProd = result.HasFlag("prod")
	p.IsDebug = result.HasFlag("debug") || result.HasFlag("g")
	p.IsLive = result.HasFlag("live")
	p.IsSO = result.HasFlag("shared")
	p.IsProf = result.HasFlag("prof")
	p.Obfuscate = result.HasFlag("obf")
	p.IsVerbose = result.HasFlag("verbose")
	p.ShowCCmd = result.HasFlag("show_c_cmd")
	p.Autofree = result.HasFlag("autofree")
	p.Compress = result.HasFlag("compress")
	p.Sanitize = result.HasFlag("sanitize")
	p.NoFmt = result.HasFlag("nofmt")

	if v, ok := result.Arguments["cflags"]; ok {
		p.CFlags = v.(string)
	}

	if cc := os.Getenv("CC"); cc != "" {
		p.CCompiler = cc
	}
}

func stdlibRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "stdlib"
	}

	return filepath.Join(filepath.Dir(exe), "stdlib")
}

func version() string {
	return "novac 0.1.0"
}

const usage = `Usage: novac <verb> [flags] <path>

Verbs:
  run              compile and run a program
  test             compile and run a package's test functions
  build [path]     compile a program without running it
  build module <p> compile a single module to an object file
  install <mod>    check that a module resolves (nothing is downloaded)
  fmt <path>       format Nova source files
  symlink          symlink novac onto PATH
  up               exit 0 without updating anything
  version          print the compiler version
  help             print this message

Flags (run/test/build):
  -o, --outpath <name>   output path
  -os <target>           target operating system
  -prod                  production build
  -d, --debug            debug build
  -live                  hot code reload
  -shared                produce a shared object/library
  -prof                  profiling instrumentation
  -obf                   obfuscate symbol names
  -v, --verbose          verbose output
  -show_c_cmd            print the host C compiler invocation
  -autofree              automatic memory management
  -compress              strip and compress the final binary
  -sanitize              enable host compiler sanitizers
  -cflags <str>          extra flags for the host C compiler
  -nofmt                 skip the formatter pass
  -repl                  start a REPL instead of compiling
`

func printUsage() {
	fmt.Print(usage)
}
