//go:build !(darwin || freebsd || linux)

package rule

import "fmt"

// Native rule plugins need the platform dlopen/dlsym path; on unsupported
// platforms native mode fails at Init and the trie and builtin modes remain
// available.
func (e *Engine) loadNative(path, symbol string) (Evaluator, closer, error) {
	return nil, nil, fmt.Errorf("rule engine: native rule plugins are not supported on this platform")
}
