// Package hotreload implements HotReloadEmitter: the C-side mutex and
// load/reload shim that backs `-live` builds, per spec.md §4.8.
package hotreload

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"novac/internal/cgen"
	"novac/internal/diag"
	"novac/internal/prefs"
)

// Emitter writes the hot-reload shim into a CGenSink when
// Preferences.IsLive is set.
type Emitter struct {
	Prefs *prefs.Preferences
	Sink  *cgen.Sink
}

// New creates an Emitter.
func New(p *prefs.Preferences, sink *cgen.Sink) *Emitter {
	return &Emitter{Prefs: p, Sink: sink}
}

// Emit writes the mutex, load_so, and reload_so definitions. It is a no-op
// unless Preferences.IsLive is set.
func (e *Emitter) Emit(soPath string) {
	if !e.Prefs.IsLive {
		return
	}

	e.emitMutex()
	e.emitLoadSO()
	e.emitReloadSO(soPath)
}

func (e *Emitter) emitMutex() {
	if e.Prefs.TargetOS.IsWindowsFamily() {
		e.Sink.AddFn("static HANDLE __nv_live_mutex;")
		e.Sink.AddFn("static void __nv_live_mutex_init(void) { __nv_live_mutex = CreateMutexA(NULL, FALSE, NULL); }")
		e.Sink.AddFn("static void __nv_live_lock(void) { WaitForSingleObject(__nv_live_mutex, INFINITE); }")
		e.Sink.AddFn("static void __nv_live_unlock(void) { ReleaseMutex(__nv_live_mutex); }")
		return
	}

	e.Sink.AddFn("static pthread_mutex_t __nv_live_mutex = PTHREAD_MUTEX_INITIALIZER;")
	e.Sink.AddFn("static void __nv_live_mutex_init(void) {}")
	e.Sink.AddFn("static void __nv_live_lock(void) { pthread_mutex_lock(&__nv_live_mutex); }")
	e.Sink.AddFn("static void __nv_live_unlock(void) { pthread_mutex_unlock(&__nv_live_mutex); }")
}

// emitLoadSO writes load_so(path), which opens the shared object and binds
// every symbol the decl pass flagged `@live` into its function-pointer
// slot.
func (e *Emitter) emitLoadSO() {
	windows := e.Prefs.TargetOS.IsWindowsFamily()

	e.Sink.AddFn("static void *__nv_so_handle;")

	if windows {
		e.Sink.AddFn("static int load_so(const char *path) {")
		e.Sink.AddFn("    HMODULE h = LoadLibraryA(path);")
		e.Sink.AddFn("    if (!h) return 0;")
		e.Sink.AddFn("    __nv_so_handle = (void *)h;")
	} else {
		e.Sink.AddFn("static int load_so(const char *path) {")
		e.Sink.AddFn("    void *h = dlopen(path, RTLD_NOW);")
		e.Sink.AddFn("    if (!h) return 0;")
		e.Sink.AddFn("    __nv_so_handle = h;")
	}

	for _, name := range e.Sink.SoFns() {
		if windows {
			e.Sink.AddFn(fmt.Sprintf("    %s = (void *)GetProcAddress((HMODULE)__nv_so_handle, \"%s\");", name, name))
		} else {
			e.Sink.AddFn(fmt.Sprintf("    %s = dlsym(__nv_so_handle, \"%s\");", name, name))
		}
		e.Sink.AddFn(fmt.Sprintf("    if (!%s) return 0;", name))
	}

	e.Sink.AddFn("    return 1;")
	e.Sink.AddFn("}")
}

// emitReloadSO writes reload_so(), a loop that polls the compiled source's
// mtime, recompiles it into a versioned temporary shared object, takes the
// mutex, and rebinds. Each temporary is unlinked only when the *next*
// successful rebind replaces it, never right after its own dlopen. The old
// handle is not closed before the unlink.
func (e *Emitter) emitReloadSO(soPath string) {
	base := filepath.Base(soPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	e.Sink.AddFn("static time_t __nv_last_mtime;")
	e.Sink.AddFn("static char __nv_prev_tmp_so[1024];")
	e.Sink.AddFn("static int __nv_tmp_so_version;")

	e.Sink.AddFn("static void reload_so(const char *srcPath, const char *recompileCmd) {")
	e.Sink.AddFn("    struct stat st;")
	e.Sink.AddFn("    if (stat(srcPath, &st) != 0 || st.st_mtime == __nv_last_mtime) return;")
	e.Sink.AddFn("    __nv_last_mtime = st.st_mtime;")
	e.Sink.AddFn("")
	e.Sink.AddFn("    char tmpSO[1024];")
	e.Sink.AddFn(fmt.Sprintf("    snprintf(tmpSO, sizeof(tmpSO), \".tmp.%%d.%s%s\", ++__nv_tmp_so_version);", stem, ext))
	e.Sink.AddFn("    if (system(recompileCmd) != 0) return;")
	e.Sink.AddFn("")
	e.Sink.AddFn("    __nv_live_lock();")
	e.Sink.AddFn("    if (!load_so(tmpSO)) { __nv_live_unlock(); return; }")
	e.Sink.AddFn("    if (__nv_prev_tmp_so[0]) unlink(__nv_prev_tmp_so);")
	e.Sink.AddFn("    strncpy(__nv_prev_tmp_so, tmpSO, sizeof(__nv_prev_tmp_so) - 1);")
	e.Sink.AddFn("    __nv_live_unlock();")
	e.Sink.AddFn("}")
}

// BuildInitial synchronously re-invokes the current novac process with
// `-shared` to produce the initial shared object, so that load_so finds it
// at program startup. The driver calls this before linking the main
// program, per spec.md §4.8.
func BuildInitial(selfExe string, args []string) error {
	cmd := exec.Command(selfExe, append(args, "-shared")...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return diag.New(diag.KindCompileFailure, "self-invocation to build the initial live shared object failed: %s", err.Error())
	}

	return nil
}
