package diag

import "fmt"

// Kind enumerates the error kinds the core surfaces, per the compiler's
// error handling design: user input errors, resolver errors, propagated
// parse errors, entry-point policy errors, and back-end errors.
type Kind int

const (
	KindNoInputFiles Kind = iota
	KindPathNotFound
	KindNotADirectory
	KindModuleNotFound
	KindImportCycle
	KindParseError
	KindMissingMain
	KindTestWithMain
	KindNoTestFunctions
	KindToolchainNotFound
	KindUnsupportedLinkDirective
	KindCompileFailure
	KindInvalidFlag
)

func (k Kind) String() string {
	switch k {
	case KindNoInputFiles:
		return "NoInputFiles"
	case KindPathNotFound:
		return "PathNotFound"
	case KindNotADirectory:
		return "NotADirectory"
	case KindModuleNotFound:
		return "ModuleNotFound"
	case KindImportCycle:
		return "ImportCycle"
	case KindParseError:
		return "ParseError"
	case KindMissingMain:
		return "MissingMain"
	case KindTestWithMain:
		return "TestWithMain"
	case KindNoTestFunctions:
		return "NoTestFunctions"
	case KindToolchainNotFound:
		return "ToolchainNotFound"
	case KindUnsupportedLinkDirective:
		return "UnsupportedLinkDirective"
	case KindCompileFailure:
		return "CompileFailure"
	case KindInvalidFlag:
		return "InvalidFlag"
	default:
		return "Unknown"
	}
}

// CompileError is a single fatal diagnostic raised by the core. Exactly one
// is surfaced per failing build, per the "fail fast with a single
// diagnostic" propagation policy.
type CompileError struct {
	Kind Kind

	// Message is the human-readable description of the failure.
	Message string

	// File, when non-empty, is the source file the error pertains to.
	File string

	// Pos, when non-nil, is the position within File.
	Pos *Position

	// Detail carries back-end errors' full captured compiler output.
	Detail string
}

func (e *CompileError) Error() string {
	if e.File != "" && e.Pos != nil {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.StartLn+1, e.Pos.StartCol+1, e.Message)
	}

	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}

	return e.Message
}

// New creates a CompileError of the given kind.
func New(kind Kind, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewAt creates a CompileError positioned within a source file (used for
// ParseError and similar file-anchored diagnostics).
func NewAt(kind Kind, file string, pos *Position, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...), File: file, Pos: pos}
}

// NewCompileFailure wraps a host toolchain's captured stderr.
func NewCompileFailure(detail string) *CompileError {
	return &CompileError{Kind: KindCompileFailure, Message: "the host C compiler failed", Detail: detail}
}
