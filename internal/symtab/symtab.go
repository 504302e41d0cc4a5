// Package symtab implements SymbolTable: the table shared across every
// parser invocation for a build, mutated only through the driver, per
// spec.md §4.3.
package symtab

import (
	"fmt"
	"sync"

	"novac/internal/diag"
	"novac/internal/parser"
)

// ModuleDescriptor tracks everything the driver knows about one module:
// its resolved directory and the set of module names it imports (the
// union across every file that belongs to it).
type ModuleDescriptor struct {
	Name    string
	Dir     string
	Imports map[string]struct{}
}

// FuncDescriptor and TypeDescriptor record a declaration's origin, enough
// for the decl→main ordering guarantee and for obfuscated-name rewriting;
// they carry no type information, since type checking is out of scope.
type FuncDescriptor struct {
	Decl *parser.Decl
}

type TypeDescriptor struct {
	Decl *parser.Decl
}

// SymbolTable is the single table threaded through every pass of a build.
// Unlike the teacher's per-package table with declared-by-usage
// resolution (full name resolution is out of scope here), this table is a
// flat insert-once registry: the decl pass populates it, and later passes
// only read from it.
type SymbolTable struct {
	mu sync.Mutex

	Modules map[string]*ModuleDescriptor
	Funcs   map[string]*FuncDescriptor
	Types   map[string]*TypeDescriptor
	Consts  map[string]*FuncDescriptor

	// ObfNames maps an obfuscated identifier to the name it was rewritten
	// from. Only Obfuscate writes it, and nothing in the build pipeline
	// calls Obfuscate, so it stays empty even when Preferences.Obfuscate
	// is set.
	ObfNames map[string]string
}

// New creates an empty SymbolTable.
func New() *SymbolTable {
	return &SymbolTable{
		Modules:  make(map[string]*ModuleDescriptor),
		Funcs:    make(map[string]*FuncDescriptor),
		Types:    make(map[string]*TypeDescriptor),
		Consts:   make(map[string]*FuncDescriptor),
		ObfNames: make(map[string]string),
	}
}

// DefineModule registers (or looks up) the descriptor for a module,
// merging the given import set into its accumulated imports.
func (st *SymbolTable) DefineModule(name, dir string, imports []string) *ModuleDescriptor {
	st.mu.Lock()
	defer st.mu.Unlock()

	md, ok := st.Modules[name]
	if !ok {
		md = &ModuleDescriptor{Name: name, Dir: dir, Imports: make(map[string]struct{})}
		st.Modules[name] = md
	}

	for _, imp := range imports {
		md.Imports[imp] = struct{}{}
	}

	return md
}

// DefineDecl inserts a top-level declaration produced by the decl pass.
// It reports KindParseError on a duplicate top-level name within the same
// module, mirroring the teacher's "symbol defined multiple times" check
// but without the declared-by-usage machinery that full expression
// resolution would require.
func (st *SymbolTable) DefineDecl(d *parser.Decl) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	key := d.ModuleName + "." + d.Name

	switch d.Kind {
	case parser.DefFunc:
		if _, ok := st.Funcs[key]; ok {
			return duplicateErr(d, key)
		}
		st.Funcs[key] = &FuncDescriptor{Decl: d}
	case parser.DefType:
		if _, ok := st.Types[key]; ok {
			return duplicateErr(d, key)
		}
		st.Types[key] = &TypeDescriptor{Decl: d}
	case parser.DefConst:
		if _, ok := st.Consts[key]; ok {
			return duplicateErr(d, key)
		}
		st.Consts[key] = &FuncDescriptor{Decl: d}
	}

	return nil
}

func duplicateErr(d *parser.Decl, key string) error {
	return diag.NewAt(diag.KindParseError, d.FilePath, d.Pos, "symbol `%s` declared multiple times", key)
}

// TestFuncs returns every function descriptor flagged as a test function
// (name begins with `test_`), in no particular order: Go map iteration
// isn't ordered, so callers needing a stable build (MainEmitter's
// generated test runner) sort the result.
func (st *SymbolTable) TestFuncs() []*FuncDescriptor {
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []*FuncDescriptor
	for _, fd := range st.Funcs {
		if fd.Decl.IsTest {
			out = append(out, fd)
		}
	}
	return out
}

// HasMain reports whether a user-declared `main` function exists in the
// given module.
func (st *SymbolTable) HasMain(moduleName string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	_, ok := st.Funcs[moduleName+".main"]
	return ok
}

// Obfuscate assigns obf to name in the rename table. No component of the
// build pipeline (CGenSink included) calls it.
func (st *SymbolTable) Obfuscate(name, obf string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.ObfNames[obf] = name
}

// String renders a short summary, useful for -verbose driver logging.
func (st *SymbolTable) String() string {
	st.mu.Lock()
	defer st.mu.Unlock()

	return fmt.Sprintf("symtab{modules=%d funcs=%d types=%d consts=%d}",
		len(st.Modules), len(st.Funcs), len(st.Types), len(st.Consts))
}
