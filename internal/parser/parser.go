package parser

import (
	"io"
	"os"
	"strings"

	"novac/internal/diag"
	"novac/internal/flagdirective"
)

// Parser is the capability boundary the driver programs against. A real
// front end would expose full expression/statement parsing and type
// checking here; per scope, this driver only ever calls the declaration-
// shape methods below, so that is all the interface carries. A future
// full parser can implement this interface alongside its richer one
// without the driver changing at all.
type Parser interface {
	// ParseImports runs the imports pass over a single file: it returns the
	// file's import table and any `#flag` directives the file contains
	// (directives may appear before declarations are known, so they are
	// collected in the same pass that builds FileImport).
	ParseImports(filePath, moduleName string) (*FileImport, []*flagdirective.FlagDirective, error)

	// ParseDecls runs the decl pass: it returns the top-level declarations
	// (functions, types, constants) visible in the file, without bodies.
	ParseDecls(filePath, moduleName string) ([]*Decl, error)
}

// SourceParser is the concrete, hand-written Parser implementation. It
// recognizes declaration shapes by scanning source text line by line; it
// does not build an AST and cannot parse expressions or statement bodies,
// matching the scope the driver actually needs (spec.md treats full parsing
// as an external collaborator).
type SourceParser struct{}

// NewSourceParser creates a SourceParser.
func NewSourceParser() *SourceParser {
	return &SourceParser{}
}

func (p *SourceParser) ParseImports(filePath, moduleName string) (*FileImport, []*flagdirective.FlagDirective, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, diag.New(diag.KindPathNotFound, "unable to open `%s`: %s", filePath, err.Error())
	}
	defer f.Close()

	fi := &FileImport{FilePath: filePath, ModuleName: moduleName}
	var flags []*flagdirective.FlagDirective

	sc := newScanner(f)
	for {
		line, lineNo, err := sc.readLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, diag.New(diag.KindParseError, "error reading `%s`: %s", filePath, err.Error())
		}

		trimmed := trimLeadingSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "import "):
			modName, ok := parseImportLine(trimmed)
			if ok {
				fi.Imports = append(fi.Imports, modName)
			}
		case strings.HasPrefix(trimmed, "#flag"):
			body := trimLeadingSpace(strings.TrimPrefix(trimmed, "#flag"))
			fd, err := flagdirective.Parse(filePath, lineNo, body)
			if err != nil {
				return nil, nil, err
			}
			flags = append(flags, fd)
		}
	}

	return fi, flags, nil
}

// parseImportLine parses `import <dotted.module.path> [as <alias>]`,
// returning just the dotted module path: aliasing does not affect the
// import DAG, only name resolution within the (out of scope) full parser.
func parseImportLine(trimmed string) (string, bool) {
	_, rest := firstWord(trimmed) // consume "import"
	modName, _ := firstWord(rest)
	modName = strings.TrimSuffix(modName, ",")
	return modName, modName != ""
}

func (p *SourceParser) ParseDecls(filePath, moduleName string) ([]*Decl, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, diag.New(diag.KindPathNotFound, "unable to open `%s`: %s", filePath, err.Error())
	}
	defer f.Close()

	var decls []*Decl
	pendingLive := false

	sc := newScanner(f)
	for {
		line, lineNo, err := sc.readLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, diag.New(diag.KindParseError, "error reading `%s`: %s", filePath, err.Error())
		}

		trimmed := trimLeadingSpace(line)

		if trimmed == "@live" {
			pendingLive = true
			continue
		}

		if trimmed == "" {
			continue
		}

		decl, ok := parseDeclLine(trimmed, filePath, moduleName, lineNo)
		if !ok {
			continue
		}

		decl.IsLive = pendingLive
		pendingLive = false
		decl.IsTest = decl.Kind == DefFunc && strings.HasPrefix(decl.Name, "test_")

		decls = append(decls, decl)
	}

	return decls, nil
}

// parseDeclLine recognizes one of:
//
//	[pub] func name(...
//	[pub] type name ...
//	[pub] const name ...
//
// It extracts only the kind and name; everything after the name (the
// signature, the body) belongs to the out-of-scope expression/type parser.
func parseDeclLine(trimmed, filePath, moduleName string, lineNo int) (*Decl, bool) {
	public := false
	rest := trimmed

	if strings.HasPrefix(rest, "pub ") {
		public = true
		rest = trimLeadingSpace(strings.TrimPrefix(rest, "pub"))
	}

	kw, rest := firstWord(rest)

	var kind DefKind
	switch kw {
	case "func":
		kind = DefFunc
	case "type":
		kind = DefType
	case "const":
		kind = DefConst
	default:
		return nil, false
	}

	name, _ := identAt(rest)
	if name == "" {
		return nil, false
	}

	pos := &diag.Position{StartLn: lineNo, EndLn: lineNo}

	return &Decl{
		Kind:       kind,
		Name:       name,
		ModuleName: moduleName,
		FilePath:   filePath,
		Pos:        pos,
		Public:     public,
	}, true
}
