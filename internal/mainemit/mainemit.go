// Package mainemit implements MainEmitter: the program entry point, the
// string-formatting helpers, and the module-init sequence, per spec.md
// §4.7.
package mainemit

import (
	"sort"

	"novac/internal/cgen"
	"novac/internal/diag"
	"novac/internal/prefs"
	"novac/internal/symtab"
	"novac/internal/util"
)

// Emitter writes the generated entry point into a CGenSink.
type Emitter struct {
	Prefs  *prefs.Preferences
	Sink   *cgen.Sink
	Symtab *symtab.SymbolTable
}

// New creates an Emitter.
func New(p *prefs.Preferences, sink *cgen.Sink, st *symtab.SymbolTable) *Emitter {
	return &Emitter{Prefs: p, Sink: sink, Symtab: st}
}

// EmitInitConsts writes init_consts: the string-arena setup, Windows
// console mode fixups, and the call sequence into every module's
// `<mod>__init_module`.
func (e *Emitter) EmitInitConsts(moduleOrder []string) {
	e.Sink.AddFn("static void init_consts(void) {")
	e.Sink.AddFn("    __nv_strarena_init();")

	if e.Prefs.TargetOS.IsWindowsFamily() {
		e.Sink.AddFn("#ifdef _WIN32")
		e.Sink.AddFn("    SetConsoleOutputCP(CP_UTF8);")
		e.Sink.AddFn("    __nv_enable_vt_mode();")
		e.Sink.AddFn("#endif")
	}

	for _, mod := range moduleOrder {
		e.Sink.AddFn("    " + mangleModuleInit(mod) + "();")
	}

	e.Sink.AddFn("}")
}

// EmitStringHelpers writes the two string-formatting helpers: `_STR`,
// which allocates a fresh buffer in the string arena, and `_STR_TMP`,
// which reuses a single shared scratch buffer for transient formatting
// (e.g. inside a loop body where the result is used once and discarded).
func (e *Emitter) EmitStringHelpers() {
	e.Sink.AddTypedef("static char __nv_str_tmp_buf[4096];")

	e.Sink.AddFn("static char *_STR(const char *fmt, ...) {")
	e.Sink.AddFn("    va_list args;")
	e.Sink.AddFn("    va_start(args, fmt);")
	e.Sink.AddFn("    char *buf = __nv_strarena_alloc(fmt, args);")
	e.Sink.AddFn("    va_end(args);")
	e.Sink.AddFn("    return buf;")
	e.Sink.AddFn("}")

	e.Sink.AddFn("static char *_STR_TMP(const char *fmt, ...) {")
	e.Sink.AddFn("    va_list args;")
	e.Sink.AddFn("    va_start(args, fmt);")
	e.Sink.AddFn("    vsnprintf(__nv_str_tmp_buf, sizeof(__nv_str_tmp_buf), fmt, args);")
	e.Sink.AddFn("    va_end(args);")
	e.Sink.AddFn("    return __nv_str_tmp_buf;")
	e.Sink.AddFn("}")
}

// EmitMain selects and writes the program entry point for moduleName, the
// module the user asked to build. It fails with MissingMain, TestWithMain,
// or NoTestFunctions per the three-mode policy in spec.md §4.7.
func (e *Emitter) EmitMain(moduleName string) error {
	isLibrary := e.Prefs.BuildMode == prefs.ModeBuildModule
	hasMain := e.Symtab.HasMain(moduleName)

	switch {
	case isLibrary:
		return nil

	case e.Prefs.IsTest:
		if hasMain {
			return diag.New(diag.KindTestWithMain, "test build of module `%s` must not declare its own `main`", moduleName)
		}

		tests := e.Symtab.TestFuncs()
		if len(tests) == 0 {
			return diag.New(diag.KindNoTestFunctions, "test build of module `%s` found no functions beginning with `test_`", moduleName)
		}

		names := util.Map(tests, func(fd *symtab.FuncDescriptor) string {
			return fd.Decl.ModuleName + "__" + fd.Decl.Name
		})
		sort.Strings(names)

		e.Sink.WriteLine("int main(int argc, char **argv) {")
		e.Sink.WriteLine("    init_consts();")
		e.Sink.WriteLine("    int __nv_assert_failures = 0;")
		for _, name := range names {
			e.Sink.WriteLine("    %s(&__nv_assert_failures);", name)
		}
		e.Sink.WriteLine("    return __nv_assert_failures != 0;")
		e.Sink.WriteLine("}")

		return nil

	default:
		if !hasMain {
			if e.Prefs.IsScript {
				e.Sink.WriteLine("int main(int argc, char **argv) {")
				e.Sink.WriteLine("    init_consts();")
				e.Sink.WriteLine("    %s();", mangleModuleInit(moduleName))
				e.Sink.WriteLine("    return 0;")
				e.Sink.WriteLine("}")
				return nil
			}

			return diag.New(diag.KindMissingMain, "module `%s` has no `main` function", moduleName)
		}

		e.Sink.WriteLine("int main(int argc, char **argv) {")
		e.Sink.WriteLine("    init_consts();")
		e.Sink.WriteLine("    return %s();", moduleName+"__main")
		e.Sink.WriteLine("}")

		return nil
	}
}

func mangleModuleInit(moduleName string) string {
	return moduleName + "__init_module"
}
