package hotreload

import (
	"os"
	"path/filepath"
	"testing"

	"novac/internal/cgen"
	"novac/internal/prefs"
)

func render(t *testing.T, sink *cgen.Sink) string {
	t.Helper()
	if err := sink.SetReservedSlot(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outPath := filepath.Join(t.TempDir(), "out.c")
	if err := sink.Save(outPath); err != nil {
		t.Fatalf("Save returned unexpected error: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read saved output: %v", err)
	}
	return string(data)
}

func TestEmitIsNoOpWithoutLive(t *testing.T) {
	sink := cgen.New()
	e := New(&prefs.Preferences{TargetOS: prefs.OSLinux}, sink)

	e.Emit("out.so")

	out := render(t, sink)
	if out != "" {
		t.Errorf("expected no output when IsLive is unset, got %q", out)
	}
}

func TestEmitWritesPosixMutexAndLoadSO(t *testing.T) {
	sink := cgen.New()
	sink.AddSoFn("widgets__on_reload")
	e := New(&prefs.Preferences{TargetOS: prefs.OSLinux, IsLive: true}, sink)

	e.Emit("out.so")

	out := render(t, sink)
	for _, want := range []string{
		"pthread_mutex_t __nv_live_mutex",
		"dlopen(path, RTLD_NOW)",
		"widgets__on_reload = dlsym(__nv_so_handle",
		"reload_so(const char *srcPath",
	} {
		if !containsSubstr(out, want) {
			t.Errorf("expected generated output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEmitWritesWindowsMutexAndLoadSO(t *testing.T) {
	sink := cgen.New()
	sink.AddSoFn("widgets__on_reload")
	e := New(&prefs.Preferences{TargetOS: prefs.OSWindows, IsLive: true}, sink)

	e.Emit("out.dll")

	out := render(t, sink)
	for _, want := range []string{
		"HANDLE __nv_live_mutex",
		"LoadLibraryA(path)",
		"GetProcAddress((HMODULE)__nv_so_handle, \"widgets__on_reload\")",
	} {
		if !containsSubstr(out, want) {
			t.Errorf("expected generated output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEmitReloadSOUsesVersionedTempName(t *testing.T) {
	sink := cgen.New()
	e := New(&prefs.Preferences{TargetOS: prefs.OSLinux, IsLive: true}, sink)

	e.Emit("build/widgets.so")

	out := render(t, sink)
	if !containsSubstr(out, ".tmp.%d.widgets.so") {
		t.Errorf("expected a versioned temp name format derived from the output basename, got:\n%s", out)
	}
}

func containsSubstr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
