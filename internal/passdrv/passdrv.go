// Package passdrv implements PassDriver: the linear imports -> decl -> main
// state machine that runs parsers over a build's file list and threads a
// shared SymbolTable and CGenSink through them, per spec.md §4.5.
//
// The driver runs strictly single-threaded and sequential: unlike the
// teacher's bootstrap analysis phase (which parses packages concurrently
// with a worker pool), nothing here may observe a later pass's state while
// an earlier pass is still running, so there is nothing to gain from
// concurrency and every guarantee is easier to state without it.
package passdrv

import (
	"sort"

	"novac/internal/cgen"
	"novac/internal/diag"
	"novac/internal/parser"
	"novac/internal/prefs"
	"novac/internal/symtab"
)

// Driver runs the three passes over one build's file list.
type Driver struct {
	Prefs  *prefs.Preferences
	Sink   *cgen.Sink
	Symtab *symtab.SymbolTable
	Parser parser.Parser

	// fileModules maps each file path to the module it belongs to, so the
	// decl and main passes can attribute declarations correctly without
	// re-deriving it from FileImport records.
	fileModules map[string]string
}

// New creates a Driver.
func New(p *prefs.Preferences, sink *cgen.Sink, st *symtab.SymbolTable, par parser.Parser) *Driver {
	return &Driver{Prefs: p, Sink: sink, Symtab: st, Parser: par, fileModules: make(map[string]string)}
}

// RegisterImports records the FileImport records BuildAssembler already
// collected while resolving the module graph, so the decl pass doesn't
// need to re-run the imports pass over every file a second time.
func (d *Driver) RegisterImports(fileImports []*parser.FileImport) {
	d.Sink.Pass = parser.PassImports

	for _, fi := range fileImports {
		d.Symtab.DefineModule(fi.ModuleName, "", fi.Imports)
		d.fileModules[fi.FilePath] = fi.ModuleName
	}
}

// RunDecl runs the decl pass over files in BuildAssembler order, inserting
// every declaration into the shared symbol table and registering `@live`
// functions with the sink's hot-reload binding table.
func (d *Driver) RunDecl(files []string) error {
	d.Sink.Pass = parser.PassDecl

	for _, f := range files {
		moduleName := d.fileModules[f]

		decls, err := d.Parser.ParseDecls(f, moduleName)
		if err != nil {
			return err
		}

		for _, decl := range decls {
			if err := d.Symtab.DefineDecl(decl); err != nil {
				return err
			}

			if decl.IsLive {
				if decl.Kind != parser.DefFunc {
					return diag.NewAt(diag.KindParseError, decl.FilePath, decl.Pos, "`@live` may only annotate a function, not `%s`", decl.Name)
				}
				d.Sink.AddSoFn(mangle(decl.ModuleName, decl.Name))
			}
		}
	}

	return nil
}

// RunMain runs the main pass: for the declarations the decl pass
// collected, it emits forward declarations into the typedefs/fns side
// buffers and a placeholder definition into the body for every function.
// Real statement/expression code generation is out of scope (spec.md §1
// treats the expression/type parser as an external collaborator the
// driver calls into, not something this package reimplements); what
// matters here is that the pass ordering, table reads, and sink-write
// discipline the driver promises are faithfully exercised end-to-end.
func (d *Driver) RunMain(files []string) error {
	d.Sink.Pass = parser.PassMain

	for _, f := range files {
		moduleName := d.fileModules[f]
		d.emitFileStub(f, moduleName)
	}

	return nil
}

func (d *Driver) emitFileStub(filePath, moduleName string) {
	funcKeys := make([]string, 0)
	for key, fd := range d.Symtab.Funcs {
		if fd.Decl.FilePath == filePath {
			funcKeys = append(funcKeys, key)
		}
	}
	sort.Strings(funcKeys)

	for _, key := range funcKeys {
		fd := d.Symtab.Funcs[key]
		mangled := mangle(moduleName, fd.Decl.Name)

		if fd.Decl.IsTest {
			d.Sink.AddFn("void " + mangled + "(int *failures);")
			d.Sink.WriteLine("void %s(int *failures) {", mangled)
			d.Sink.WriteLine("    /* %s */", key)
			d.Sink.WriteLine("}")
			continue
		}

		d.Sink.AddFn("void " + mangled + "(void);")
		d.Sink.WriteLine("void %s(void) {", mangled)
		d.Sink.WriteLine("    /* %s */", key)
		d.Sink.WriteLine("}")
	}

	typeKeys := make([]string, 0)
	for key, td := range d.Symtab.Types {
		if td.Decl.FilePath == filePath {
			typeKeys = append(typeKeys, key)
		}
	}
	sort.Strings(typeKeys)

	for _, key := range typeKeys {
		td := d.Symtab.Types[key]
		name := mangle(moduleName, td.Decl.Name)
		d.Sink.AddTypedef("typedef struct " + name + " " + name + "; /* " + key + " */")
	}
}

// mangle produces the C-level symbol name for a module-qualified
// declaration, preventing collisions between same-named functions in
// different modules.
func mangle(moduleName, name string) string {
	return moduleName + "__" + name
}
