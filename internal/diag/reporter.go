package diag

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// LogLevel controls how much of the compiler's "aesthetic" output (compile
// header, per-phase timings, finished banner) is displayed. Errors are
// displayed at every level except LogLevelSilent, which displays nothing;
// reported errors are counted at every level.
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelVerbose
)

// Reporter is the single diagnostic sink for a compilation. It is shared
// across the whole driver the way the teacher's `report` package is process
// global, but is modeled here as an explicit value the driver owns and
// threads through, per this project's "no ambient singletons" design note.
type Reporter struct {
	m sync.Mutex

	LogLevel LogLevel

	errorCount int
	warnings   []string

	startTime  time.Time
	prevUpdate time.Time
}

// NewReporter creates a reporter at the given log level.
func NewReporter(level LogLevel) *Reporter {
	now := time.Now()
	return &Reporter{
		LogLevel:   level,
		startTime:  now,
		prevUpdate: now,
	}
}

// ShouldProceed indicates whether any fatal (non-warning) errors have been
// reported so far; the driver checks this between phases.
func (r *Reporter) ShouldProceed() bool {
	r.m.Lock()
	defer r.m.Unlock()
	return r.errorCount == 0
}

// Report records and displays a CompileError. It does not exit the process:
// callers decide whether a given error is fatal to the current phase.
func (r *Reporter) Report(err *CompileError) {
	r.m.Lock()
	r.errorCount++
	r.m.Unlock()

	if r.LogLevel > LogLevelSilent {
		displayCompileError(err)
	}
}

// Warn records and displays a non-fatal warning message.
func (r *Reporter) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	r.m.Lock()
	r.warnings = append(r.warnings, msg)
	r.m.Unlock()

	if r.LogLevel >= LogLevelWarn {
		displayWarning(msg)
	}
}

// Fatal reports a fatal error and terminates the process with exit status 1,
// per the "V error:"-style prefix propagation policy.
func (r *Reporter) Fatal(err *CompileError) {
	r.Report(err)
	os.Exit(1)
}

// Header displays the pre-compilation banner (target triple, caching status)
// if the log level is verbose.
func (r *Reporter) Header(target string, caching bool) {
	if r.LogLevel == LogLevelVerbose {
		displayHeader(target, caching)
		r.prevUpdate = time.Now()
	}
}

// PhaseDone reports the completion of a named compiler phase along with its
// elapsed time, if the log level is verbose.
func (r *Reporter) PhaseDone(phase string) {
	if r.LogLevel == LogLevelVerbose {
		displayPhaseDone(phase, time.Since(r.prevUpdate))
		r.prevUpdate = time.Now()
	}
}

// Finished displays the concluding message for compilation: all accumulated
// warnings followed by a success/failure summary.
func (r *Reporter) Finished(outputPath string) {
	r.m.Lock()
	warnings := append([]string(nil), r.warnings...)
	succeeded := r.errorCount == 0
	r.m.Unlock()

	if r.LogLevel >= LogLevelWarn {
		for _, w := range warnings {
			displayWarning(w)
		}
	}

	if r.LogLevel == LogLevelVerbose {
		displayFinished(succeeded, outputPath, time.Since(r.startTime))
	}
}
