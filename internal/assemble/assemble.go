// Package assemble implements BuildAssembler: turning a user-given path
// into the ordered, deduplicated list of source files that make up one
// build, per spec.md §4.4.
package assemble

import (
	"os"
	"path/filepath"

	"novac/internal/diag"
	"novac/internal/flagdirective"
	"novac/internal/importgraph"
	"novac/internal/modpath"
	"novac/internal/parser"
	"novac/internal/prefs"
	"novac/internal/srcfilter"
)

// BuiltinModuleName names the always-first, always-present builtin module.
const BuiltinModuleName = "builtin"

// Result is the output of Assemble: the dependency-ordered file list the
// driver feeds to PassDriver, along with every FileImport and `#flag`
// directive collected along the way (the imports pass runs here, not
// again in PassDriver, since BuildAssembler already needs it to resolve
// the module graph).
type Result struct {
	Files       []string
	FileImports []*parser.FileImport
	Flags       []*flagdirective.FlagDirective
}

// Assembler drives file discovery and import resolution.
type Assembler struct {
	Prefs    *prefs.Preferences
	Resolver *modpath.Resolver
	Parser   parser.Parser
}

// New creates an Assembler.
func New(p *prefs.Preferences, resolver *modpath.Resolver, par parser.Parser) *Assembler {
	return &Assembler{Prefs: p, Resolver: resolver, Parser: par}
}

// moduleFiles tracks, for one module, the files discovered for it in
// srcfilter order (first-seen order is preserved at concatenation time).
type moduleFiles struct {
	name  string
	files []string
}

// Assemble runs the full BuildAssembler algorithm against startPath, the
// root file or directory given on the command line, for a module named
// moduleName (read from nova.mod, or "main" when there is none).
func (a *Assembler) Assemble(startPath, moduleName string) (*Result, error) {
	builtinDir := filepath.Join(a.Prefs.StdlibRoot, BuiltinModuleName)
	builtinFiles, err := srcfilter.List(builtinDir, a.Prefs.TargetOS, a.Prefs.IsTest)
	if err != nil {
		return nil, diag.New(diag.KindModuleNotFound, "unable to read builtin module at `%s`: %s", builtinDir, err.Error())
	}

	userFiles, err := a.userFiles(startPath)
	if err != nil {
		return nil, err
	}
	if len(userFiles) == 0 {
		return nil, diag.New(diag.KindNoInputFiles, "no input files found at `%s`", startPath)
	}

	var allImports []*parser.FileImport
	var allFlags []*flagdirective.FlagDirective

	modules := map[string]*moduleFiles{
		BuiltinModuleName: {name: BuiltinModuleName, files: builtinFiles},
		moduleName:        {name: moduleName, files: userFiles},
	}
	var moduleOrder []string
	if moduleName != BuiltinModuleName {
		moduleOrder = []string{BuiltinModuleName, moduleName}
	} else {
		moduleOrder = []string{BuiltinModuleName}
	}

	runImportsPass := func(mf *moduleFiles) ([]string, error) {
		var discovered []string
		for _, f := range mf.files {
			fi, flags, err := a.Parser.ParseImports(f, mf.name)
			if err != nil {
				return nil, err
			}
			allImports = append(allImports, fi)
			allFlags = append(allFlags, flags...)
			discovered = append(discovered, fi.Imports...)
		}
		return discovered, nil
	}

	// Iterate the imports pass to a fixpoint: newly discovered modules may
	// themselves import modules not yet seen.
	worklist := moduleOrder
	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]

		discovered, err := runImportsPass(modules[name])
		if err != nil {
			return nil, err
		}

		for _, dep := range discovered {
			if _, ok := modules[dep]; ok {
				continue
			}

			dir, err := a.Resolver.Resolve(dep)
			if err != nil {
				return nil, err
			}

			files, err := srcfilter.List(dir, a.Prefs.TargetOS, false)
			if err != nil {
				return nil, diag.New(diag.KindModuleNotFound, "unable to read module `%s` at `%s`: %s", dep, dir, err.Error())
			}

			mf := &moduleFiles{name: dep, files: files}
			modules[dep] = mf
			moduleOrder = append(moduleOrder, dep)
			worklist = append(worklist, dep)
		}
	}

	graph := importgraph.New(allImports)
	topo, err := graph.TopoSort()
	if err != nil {
		return nil, err
	}

	var ordered []string
	ordered = append(ordered, modules[BuiltinModuleName].files...)

	for _, mname := range topo {
		if mname == BuiltinModuleName || mname == moduleName {
			continue
		}
		if mf, ok := modules[mname]; ok {
			ordered = append(ordered, mf.files...)
		}
	}

	ordered = append(ordered, modules[moduleName].files...)

	return &Result{
		Files:       dedup(ordered),
		FileImports: allImports,
		Flags:       allFlags,
	}, nil
}

func (a *Assembler) userFiles(startPath string) ([]string, error) {
	info, err := os.Stat(startPath)
	if err != nil {
		return nil, diag.New(diag.KindPathNotFound, "path `%s` does not exist", startPath)
	}

	if !info.IsDir() {
		return []string{startPath}, nil
	}

	files, err := srcfilter.List(startPath, a.Prefs.TargetOS, a.Prefs.IsTest)
	if err != nil {
		return nil, diag.New(diag.KindNotADirectory, "unable to read directory `%s`: %s", startPath, err.Error())
	}

	return files, nil
}

// dedup removes duplicate entries while preserving first-seen order.
func dedup(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))

	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	return out
}
