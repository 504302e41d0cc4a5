package flagdirective

import (
	"testing"

	"novac/internal/diag"
)

func TestParseValidDirectives(t *testing.T) {
	tests := []struct {
		body     string
		wantOS   string
		wantKind string
	}{
		{"-l curl", "", "-l"},
		{"linux -l m", "linux", "-l"},
		{"windows -L C:\\libs", "windows", "-L"},
		{"-I ../include", "", "-I"},
		{"raw --whole-archive", "", "raw"},
		{"mac -l Foundation", "mac", "-l"},
	}

	for _, tc := range tests {
		fd, err := Parse("x.nv", 1, tc.body)
		if err != nil {
			t.Errorf("Parse(%q) returned unexpected error: %v", tc.body, err)
			continue
		}
		if fd.OS != tc.wantOS {
			t.Errorf("Parse(%q).OS = %q; want %q", tc.body, fd.OS, tc.wantOS)
		}
		if fd.Kind != tc.wantKind {
			t.Errorf("Parse(%q).Kind = %q; want %q", tc.body, fd.Kind, tc.wantKind)
		}
	}
}

func TestParseValueJoinsRemainingFields(t *testing.T) {
	fd, err := Parse("x.nv", 1, "raw --start-group a b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "--start-group a b"
	if fd.Value != want {
		t.Errorf("Value = %q; want %q", fd.Value, want)
	}
}

func TestParseRejectsEmptyDirective(t *testing.T) {
	_, err := Parse("x.nv", 1, "")
	assertKind(t, err, diag.KindInvalidFlag)
}

func TestParseRejectsMissingKind(t *testing.T) {
	_, err := Parse("x.nv", 1, "linux")
	assertKind(t, err, diag.KindInvalidFlag)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse("x.nv", 1, "-z foo")
	assertKind(t, err, diag.KindInvalidFlag)
}

func TestParseRejectsMissingValue(t *testing.T) {
	_, err := Parse("x.nv", 1, "-l")
	assertKind(t, err, diag.KindInvalidFlag)
}

func assertKind(t *testing.T, err error, want diag.Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	cerr, ok := err.(*diag.CompileError)
	if !ok {
		t.Fatalf("expected *diag.CompileError, got %T", err)
	}
	if cerr.Kind != want {
		t.Errorf("Kind = %v; want %v", cerr.Kind, want)
	}
}

func TestAppliesToTarget(t *testing.T) {
	tests := []struct {
		os     string
		target string
		want   bool
	}{
		{"", "linux", true},
		{"", "windows", true},
		{"linux", "linux", true},
		{"linux", "windows", false},
		{"windows", "msvc", false},
	}

	for _, tc := range tests {
		fd := &FlagDirective{OS: tc.os}
		if got := AppliesToTarget(fd, tc.target); got != tc.want {
			t.Errorf("AppliesToTarget({OS:%q}, %q) = %v; want %v", tc.os, tc.target, got, tc.want)
		}
	}
}
