package wintool

import (
	"runtime"
	"testing"
)

func TestFindMSVCFailsOnNonWindowsHost(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("ErrNotWindows only triggers on non-Windows hosts")
	}

	_, err := FindMSVC("x86_64")
	if err != ErrNotWindows {
		t.Errorf("FindMSVC on a non-Windows host = %v; want ErrNotWindows", err)
	}
}

func TestGetVersionIntOrdersVersionsCorrectly(t *testing.T) {
	older := getVersionInt("14.29.30133")
	newer := getVersionInt("14.30.30705")

	if newer <= older {
		t.Errorf("getVersionInt(14.30.30705) = %d; want it to be greater than getVersionInt(14.29.30133) = %d", newer, older)
	}
}

func TestGetVersionIntMajorVersionDominates(t *testing.T) {
	v14 := getVersionInt("14.0.0")
	v15 := getVersionInt("15.0.0")

	if v15 <= v14 {
		t.Errorf("a higher major version should always sort higher: got v14=%d v15=%d", v14, v15)
	}
}

func TestGetVersionIntMalformedComponentYieldsZero(t *testing.T) {
	if got := getVersionInt("not-a-version"); got != 0 {
		t.Errorf("getVersionInt(%q) = %d; want 0", "not-a-version", got)
	}
}
