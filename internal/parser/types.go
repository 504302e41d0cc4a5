// Package parser implements the Parser capability boundary: spec.md §1
// treats the lexer, expression/type parser, and type checker as external
// collaborators, so this package implements only what the driver needs to
// thread through the imports/decl/main passes — import tables, top-level
// declaration shapes, and `#flag`/live-function side-channel data. It does
// NOT parse expressions, statements, or perform type inference.
package parser

import "novac/internal/diag"

// Pass selects which analysis depth a Parser instance runs at. Passes run
// in the fixed order Imports -> Decl -> Main; a Parser must not read state
// written only by a later pass.
type Pass int

const (
	PassImports Pass = iota
	PassDecl
	PassMain
)

// FileImport records one file's import table, in the order the imports
// appeared in source. The set of all FileImports across a build forms the
// edges of the import DAG.
type FileImport struct {
	FilePath   string
	ModuleName string
	Imports    []string
}

// DefKind enumerates the kinds of top-level declaration a Parser can emit
// during the decl pass.
type DefKind int

const (
	DefFunc DefKind = iota
	DefType
	DefConst
)

// Decl is a top-level declaration collected during the decl pass, without a
// body: just enough information for symbol-table insertion and later
// cross-file reference.
type Decl struct {
	Kind       DefKind
	Name       string
	ModuleName string
	FilePath   string
	Pos        *diag.Position

	// Public indicates whether the declaration is exported to other
	// modules (the declaration starts with the `pub` keyword).
	Public bool

	// IsLive marks a function flagged for hot-reload (source annotation
	// `@live`); the driver appends its mangled name to CGenSink.SoFns.
	IsLive bool

	// IsTest marks a function whose name begins with `test_`.
	IsTest bool
}
