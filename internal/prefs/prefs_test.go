package prefs

import "testing"

func TestParseTargetOS(t *testing.T) {
	tests := []struct {
		name string
		want TargetOS
		ok   bool
	}{
		{"linux", OSLinux, true},
		{"mac", OSMac, true},
		{"macos", OSMac, true},
		{"darwin", OSMac, true},
		{"windows", OSWindows, true},
		{"msvc", OSMSVC, true},
		{"js", OSJS, true},
		{"amiga", 0, false},
	}

	for _, tc := range tests {
		got, ok := ParseTargetOS(tc.name)
		if ok != tc.ok {
			t.Errorf("ParseTargetOS(%q) ok = %v; want %v", tc.name, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseTargetOS(%q) = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestTargetOSStringRoundTripsThroughParse(t *testing.T) {
	oses := []TargetOS{OSMac, OSLinux, OSWindows, OSFreeBSD, OSOpenBSD, OSNetBSD, OSDragonfly, OSMSVC, OSJS}

	for _, os := range oses {
		name := os.String()
		if name == "unknown" {
			t.Errorf("TargetOS(%d).String() returned \"unknown\"", os)
			continue
		}
		parsed, ok := ParseTargetOS(name)
		if !ok {
			t.Errorf("ParseTargetOS(%q) failed to parse the output of String()", name)
			continue
		}
		if parsed != os {
			t.Errorf("round-trip mismatch: %v -> %q -> %v", os, name, parsed)
		}
	}
}

func TestIsWindowsFamily(t *testing.T) {
	tests := []struct {
		os   TargetOS
		want bool
	}{
		{OSWindows, true},
		{OSMSVC, true},
		{OSLinux, false},
		{OSMac, false},
		{OSJS, false},
	}

	for _, tc := range tests {
		if got := tc.os.IsWindowsFamily(); got != tc.want {
			t.Errorf("%v.IsWindowsFamily() = %v; want %v", tc.os, got, tc.want)
		}
	}
}

func TestOutNameForTargetDefaultsToOut(t *testing.T) {
	p := &Preferences{TargetOS: OSLinux}
	if got := p.OutNameForTarget(); got != "out" {
		t.Errorf("OutNameForTarget() = %q; want %q", got, "out")
	}
}

func TestOutNameForTargetAppendsExeOnWindows(t *testing.T) {
	p := &Preferences{TargetOS: OSWindows, OutName: "widgets"}
	if got := p.OutNameForTarget(); got != "widgets.exe" {
		t.Errorf("OutNameForTarget() = %q; want %q", got, "widgets.exe")
	}
}

func TestOutNameForTargetDoesNotDoubleAppendExe(t *testing.T) {
	p := &Preferences{TargetOS: OSWindows, OutName: "widgets.exe"}
	if got := p.OutNameForTarget(); got != "widgets.exe" {
		t.Errorf("OutNameForTarget() = %q; want %q", got, "widgets.exe")
	}
}

func TestOutNameForTargetSharedObjectUnix(t *testing.T) {
	p := &Preferences{TargetOS: OSLinux, OutName: "widgets", IsSO: true}
	if got := p.OutNameForTarget(); got != "widgets.so" {
		t.Errorf("OutNameForTarget() = %q; want %q", got, "widgets.so")
	}
}

func TestOutNameForTargetSharedObjectWindows(t *testing.T) {
	p := &Preferences{TargetOS: OSWindows, OutName: "widgets", IsSO: true}
	if got := p.OutNameForTarget(); got != "widgets.dll" {
		t.Errorf("OutNameForTarget() = %q; want %q", got, "widgets.dll")
	}
}

func TestDefaultPopulatesTargetAndStdlibRoot(t *testing.T) {
	p := Default(OSLinux, "/opt/novac/stdlib")
	if p.TargetOS != OSLinux {
		t.Errorf("TargetOS = %v; want OSLinux", p.TargetOS)
	}
	if p.StdlibRoot != "/opt/novac/stdlib" {
		t.Errorf("StdlibRoot = %q; want %q", p.StdlibRoot, "/opt/novac/stdlib")
	}
	if p.BuildMode != ModeDefault {
		t.Errorf("BuildMode = %v; want ModeDefault", p.BuildMode)
	}
}
