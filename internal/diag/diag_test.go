package diag

import "testing"

func TestCompileErrorErrorFormatsWithPosition(t *testing.T) {
	err := NewAt(KindParseError, "widgets.nv", &Position{StartLn: 4, StartCol: 2}, "unexpected token")
	want := "widgets.nv:5:3: unexpected token"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
}

func TestCompileErrorErrorFormatsWithoutPosition(t *testing.T) {
	err := New(KindMissingMain, "module `%s` has no main", "widgets")
	want := "module `widgets` has no main"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
}

func TestCompileErrorErrorFormatsFileOnly(t *testing.T) {
	err := &CompileError{Kind: KindPathNotFound, Message: "not found", File: "widgets.nv"}
	want := "widgets.nv: not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
}

func TestKindStringCoversEveryDefinedKind(t *testing.T) {
	kinds := []Kind{
		KindNoInputFiles, KindPathNotFound, KindNotADirectory, KindModuleNotFound,
		KindImportCycle, KindParseError, KindMissingMain, KindTestWithMain,
		KindNoTestFunctions, KindToolchainNotFound, KindUnsupportedLinkDirective,
		KindCompileFailure, KindInvalidFlag,
	}

	for _, k := range kinds {
		if got := k.String(); got == "Unknown" {
			t.Errorf("Kind(%d).String() returned \"Unknown\"; every defined kind should have a name", k)
		}
	}
}

func TestKindStringUnknownValue(t *testing.T) {
	if got := Kind(999).String(); got != "Unknown" {
		t.Errorf("Kind(999).String() = %q; want \"Unknown\"", got)
	}
}

func TestNewCompileFailureCarriesDetail(t *testing.T) {
	err := NewCompileFailure("undefined reference to `foo`")
	if err.Kind != KindCompileFailure {
		t.Errorf("Kind = %v; want KindCompileFailure", err.Kind)
	}
	if err.Detail != "undefined reference to `foo`" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestReporterReportIncrementsErrorCount(t *testing.T) {
	r := NewReporter(LogLevelSilent)
	if !r.ShouldProceed() {
		t.Fatal("a fresh reporter should report ShouldProceed() == true")
	}

	r.Report(New(KindParseError, "boom"))

	if r.ShouldProceed() {
		t.Error("ShouldProceed() should be false after Report")
	}
}

func TestReporterWarnDoesNotAffectShouldProceed(t *testing.T) {
	r := NewReporter(LogLevelSilent)
	r.Warn("nova-version mismatch")

	if !r.ShouldProceed() {
		t.Error("warnings should not affect ShouldProceed()")
	}
}

func TestPositionFromRangeSpansBothEndpoints(t *testing.T) {
	start := &Position{StartLn: 1, StartCol: 2}
	end := &Position{EndLn: 3, EndCol: 4}

	got := PositionFromRange(start, end)
	if got.StartLn != 1 || got.StartCol != 2 || got.EndLn != 3 || got.EndCol != 4 {
		t.Errorf("PositionFromRange = %+v; want {1 2 3 4}", got)
	}
}
