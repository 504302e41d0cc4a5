// Package cgen implements CGenSink: the line-oriented accumulator that
// collects every pass's C output and finalizes it to a single translation
// unit, per spec.md §4.6.
package cgen

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"novac/internal/diag"
	"novac/internal/parser"
)

// Sink accumulates generated C text across the imports/decl/main passes.
// Side buffers are append-only; the reserved slot may be set exactly once,
// after the decl pass has run and the full set of aggregated definitions
// is known. Save writes the stable concatenation
// includes/typedefs ∥ reserved-slot ∥ fns/consts/constsInit/threadArgs ∥
// body-lines.
type Sink struct {
	mu sync.Mutex

	// Pass is the state-machine field PassDriver advances; parsers read it
	// to decide what to emit.
	Pass parser.Pass

	includes   []string
	typedefs   []string
	fns        []string
	consts     []string
	constsInit []string
	threadArgs []string

	// soFns holds the mangled names of `@live`-flagged functions that the
	// hot-reload shim binds via load_so. Save does not write it; it is read
	// back through SoFns when the shim is emitted.
	soFns []string

	reservedSet     bool
	reservedContent string

	body []string
}

// New creates an empty Sink positioned at the imports pass.
func New() *Sink {
	return &Sink{Pass: parser.PassImports}
}

func (s *Sink) AddInclude(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.includes = append(s.includes, line)
}

func (s *Sink) AddTypedef(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typedefs = append(s.typedefs, line)
}

func (s *Sink) AddFn(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, line)
}

func (s *Sink) AddConst(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consts = append(s.consts, line)
}

func (s *Sink) AddConstInit(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constsInit = append(s.constsInit, line)
}

func (s *Sink) AddThreadArg(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threadArgs = append(s.threadArgs, line)
}

// AddSoFn registers a live-function's mangled name for the hot-reload
// binding table.
func (s *Sink) AddSoFn(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.soFns = append(s.soFns, name)
}

// SoFns returns the accumulated live-function names, in insertion order.
func (s *Sink) SoFns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.soFns))
	copy(out, s.soFns)
	return out
}

// WriteLine appends one formatted line to the main body.
func (s *Sink) WriteLine(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = append(s.body, fmt.Sprintf(format, args...))
}

// SetReservedSlot fills the reserved definitions slot exactly once. It is
// an error to call this more than once per build: the driver calls it a
// single time, right after the decl pass, once platform headers and
// aggregated forward declarations are known.
func (s *Sink) SetReservedSlot(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reservedSet {
		return diag.New(diag.KindParseError, "CGenSink reserved slot written more than once")
	}

	s.reservedContent = content
	s.reservedSet = true
	return nil
}

// headBuffers joins the includes/typedefs buffers: the declarations the
// reserved slot's platform headers and typedefs (HANDLE, pthread_mutex_t,
// stdarg.h, ...) must precede.
func (s *Sink) headBuffers() string {
	var b strings.Builder

	join := func(lines []string) {
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}

	join(s.includes)
	join(s.typedefs)

	return b.String()
}

// tailBuffers joins the fns/consts/constsInit/threadArgs buffers that come
// after the reserved slot, in the fixed order spec.md names them.
func (s *Sink) tailBuffers() string {
	var b strings.Builder

	join := func(lines []string) {
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}

	join(s.fns)
	join(s.consts)
	join(s.constsInit)
	join(s.threadArgs)

	return b.String()
}

// Save writes the finalized translation unit to outPath: the concatenation
// includes/typedefs ∥ reserved-slot-content ∥ fns/consts/constsInit/
// threadArgs ∥ body-lines, as a single UTF-8 file, matching spec.md §3's
// insertion order (the reserved slot's platform headers and typedefs must
// precede any buffer that references the types/macros they declare). Save
// is idempotent and may be called more than once with the same result,
// since it does not mutate sink state.
func (s *Sink) Save(outPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString(s.headBuffers())
	b.WriteString(s.reservedContent)
	b.WriteString(s.tailBuffers())
	for _, l := range s.body {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0644); err != nil {
		return diag.New(diag.KindCompileFailure, "unable to write generated C file `%s`: %s", outPath, err.Error())
	}

	return nil
}
