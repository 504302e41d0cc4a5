package passdrv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"novac/internal/cgen"
	"novac/internal/diag"
	"novac/internal/flagdirective"
	"novac/internal/parser"
	"novac/internal/prefs"
	"novac/internal/symtab"
)

// fakeParser implements parser.Parser directly from an in-memory decl
// table, so these tests exercise the driver's bookkeeping without touching
// disk.
type fakeParser struct {
	decls map[string][]*parser.Decl
}

func (p fakeParser) ParseImports(filePath, moduleName string) (*parser.FileImport, []*flagdirective.FlagDirective, error) {
	return &parser.FileImport{FilePath: filePath, ModuleName: moduleName}, nil, nil
}

func (p fakeParser) ParseDecls(filePath, moduleName string) ([]*parser.Decl, error) {
	return p.decls[filePath], nil
}

func declFor(module, name, file string, kind parser.DefKind) *parser.Decl {
	return &parser.Decl{
		Kind:       kind,
		Name:       name,
		ModuleName: module,
		FilePath:   file,
		Pos:        &diag.Position{StartLn: 1, EndLn: 1},
	}
}

func TestRunDeclInsertsDeclarationsAndLiveFns(t *testing.T) {
	decls := map[string][]*parser.Decl{
		"widgets.nv": {
			declFor("widgets", "main", "widgets.nv", parser.DefFunc),
			func() *parser.Decl {
				d := declFor("widgets", "on_reload", "widgets.nv", parser.DefFunc)
				d.IsLive = true
				return d
			}(),
		},
	}

	st := symtab.New()
	sink := cgen.New()
	driver := New(&prefs.Preferences{}, sink, st, fakeParser{decls: decls})
	driver.RegisterImports([]*parser.FileImport{{FilePath: "widgets.nv", ModuleName: "widgets"}})

	if err := driver.RunDecl([]string{"widgets.nv"}); err != nil {
		t.Fatalf("RunDecl returned unexpected error: %v", err)
	}

	if !st.HasMain("widgets") {
		t.Error("expected widgets.main to be registered")
	}

	soFns := sink.SoFns()
	if len(soFns) != 1 || soFns[0] != "widgets__on_reload" {
		t.Errorf("SoFns() = %v; want [widgets__on_reload]", soFns)
	}
}

func TestRunDeclRejectsLiveOnNonFunc(t *testing.T) {
	d := declFor("widgets", "Config", "widgets.nv", parser.DefType)
	d.IsLive = true

	decls := map[string][]*parser.Decl{"widgets.nv": {d}}
	st := symtab.New()
	sink := cgen.New()
	driver := New(&prefs.Preferences{}, sink, st, fakeParser{decls: decls})
	driver.RegisterImports([]*parser.FileImport{{FilePath: "widgets.nv", ModuleName: "widgets"}})

	err := driver.RunDecl([]string{"widgets.nv"})
	if err == nil {
		t.Fatal("expected an error for @live annotating a type")
	}
	cerr, ok := err.(*diag.CompileError)
	if !ok || cerr.Kind != diag.KindParseError {
		t.Errorf("expected KindParseError, got %v", err)
	}
}

func TestRunDeclPropagatesDuplicateSymbolError(t *testing.T) {
	decls := map[string][]*parser.Decl{
		"widgets.nv": {
			declFor("widgets", "run", "widgets.nv", parser.DefFunc),
			declFor("widgets", "run", "widgets.nv", parser.DefFunc),
		},
	}

	st := symtab.New()
	sink := cgen.New()
	driver := New(&prefs.Preferences{}, sink, st, fakeParser{decls: decls})
	driver.RegisterImports([]*parser.FileImport{{FilePath: "widgets.nv", ModuleName: "widgets"}})

	if err := driver.RunDecl([]string{"widgets.nv"}); err == nil {
		t.Fatal("expected a duplicate-symbol error")
	}
}

func TestRunMainEmitsSortedDeterministicStubs(t *testing.T) {
	decls := []*parser.Decl{
		declFor("widgets", "zeta", "widgets.nv", parser.DefFunc),
		declFor("widgets", "alpha", "widgets.nv", parser.DefFunc),
	}

	run := func() string {
		st := symtab.New()
		for _, d := range decls {
			if err := st.DefineDecl(d); err != nil {
				t.Fatalf("unexpected error seeding symtab: %v", err)
			}
		}

		sink := cgen.New()
		driver := New(&prefs.Preferences{}, sink, st, fakeParser{})
		driver.RegisterImports([]*parser.FileImport{{FilePath: "widgets.nv", ModuleName: "widgets"}})

		if err := driver.RunMain([]string{"widgets.nv"}); err != nil {
			t.Fatalf("RunMain returned unexpected error: %v", err)
		}
		if err := sink.SetReservedSlot(""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		outPath := filepath.Join(t.TempDir(), "out.c")
		if err := sink.Save(outPath); err != nil {
			t.Fatalf("Save returned unexpected error: %v", err)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read saved output: %v", err)
		}
		return string(data)
	}

	first := run()
	second := run()
	if first != second {
		t.Errorf("RunMain output was not deterministic across runs:\nfirst:  %q\nsecond: %q", first, second)
	}

	alphaIdx := strings.Index(first, "widgets__alpha")
	zetaIdx := strings.Index(first, "widgets__zeta")
	if alphaIdx == -1 || zetaIdx == -1 {
		t.Fatalf("expected both mangled names present, got %q", first)
	}
	if alphaIdx > zetaIdx {
		t.Errorf("expected alpha to sort before zeta, got %q", first)
	}
}
