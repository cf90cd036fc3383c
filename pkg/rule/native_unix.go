//go:build darwin || freebsd || linux

package rule

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// library wraps an open dynamic-library handle so that every exit path,
// including a failed symbol lookup partway through Init, releases it.
type library struct {
	handle uintptr
	path   string
}

func (l *library) Close() error { return purego.Dlclose(l.handle) }

// libraryCandidates lists the paths tried for a configured library name: the
// path verbatim when it already names a shared object, otherwise the bare
// name and its platform-decorated lib<name> variant per extension.
func libraryCandidates(path string) []string {
	switch filepath.Ext(path) {
	case ".so", ".dylib":
		return []string{path}
	}
	exts := []string{".so"}
	if runtime.GOOS == "darwin" {
		exts = []string{".dylib", ".so"}
	}
	dir, base := filepath.Split(path)
	var out []string
	for _, ext := range exts {
		out = append(out, path+ext, filepath.Join(dir, "lib"+base+ext))
	}
	return out
}

// loadNative opens the shared library and resolves the exported transition
// function. A resolved symbol on the wrong artifact is worse than a load
// failure, so a successful open followed by a missing symbol fails outright
// instead of falling through to the next candidate.
func (e *Engine) loadNative(path, symbol string) (Evaluator, closer, error) {
	var lib *library
	var firstErr error
	for _, cand := range libraryCandidates(path) {
		h, err := purego.Dlopen(cand, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		lib = &library{handle: h, path: cand}
		break
	}
	if lib == nil {
		return nil, nil, fmt.Errorf("rule engine: load library %q: %w", path, firstErr)
	}

	fn, err := purego.Dlsym(lib.handle, symbol)
	if err != nil {
		lib.Close()
		return nil, nil, fmt.Errorf("rule engine: resolve %q in %s: %w", symbol, lib.path, err)
	}

	e.log.Info("native rule loaded", "path", lib.path, "symbol", symbol)
	ne := &nativeEvaluator{
		fn:   fn,
		cbuf: make([]int32, 0, len(e.hood)),
		warn: func(key, msg string) { e.logOnce(slog.LevelWarn, key, msg) },
	}
	return ne, lib, nil
}

// nativeEvaluator invokes an externally compiled transition function with
// the C signature int fn(const int*). The function receives a pointer to a
// contiguous buffer of exactly K int32 values in neighborhood order; the
// contract that it reads no further is trusted, not enforced.
type nativeEvaluator struct {
	fn   uintptr
	cbuf []int32
	warn func(key, msg string)
}

func (n *nativeEvaluator) Next(neighbors []int) (int, bool) {
	if n.fn == 0 {
		n.warn("native-fn-nil", "native rule function pointer is nil; leaving cell unchanged")
		return 0, false
	}
	n.cbuf = n.cbuf[:0]
	for _, s := range neighbors {
		n.cbuf = append(n.cbuf, int32(s))
	}
	var p uintptr
	if len(n.cbuf) > 0 {
		p = uintptr(unsafe.Pointer(&n.cbuf[0]))
	}
	r1, _, _ := purego.SyscallN(n.fn, p)
	return int(int32(r1)), true
}
