//go:build !llama

package backend

import "context"

// This file provides a no-CGO stub for the in-process llama runtime. It is
// compiled when the 'llama' build tag is NOT set, keeping default builds and
// CI CGO-free. The real runtime lives in local_llama.go (tagged 'llama').

// localBuilt indicates this binary was compiled with real llama support.
var localBuilt = false

// LocalRuntime is a stub that refuses to run without the 'llama' build tag.
// No mocked behavior in production binaries built without CGO support.
type LocalRuntime struct {
	name string
}

// NewLocalRuntime fails fast: the llama runtime is not available in this build.
func NewLocalRuntime(modelPath string, ctxSize, threads int) (*LocalRuntime, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

// Model returns the model path this runtime was asked to load.
func (l *LocalRuntime) Model() string { return l.name }

// Generate always reports the missing runtime.
func (l *LocalRuntime) Generate(ctx context.Context, texts []string, maxLength int) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

// Encode always reports the missing runtime.
func (l *LocalRuntime) Encode(ctx context.Context, text string) ([]int, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

// Close has nothing to free in the stub.
func (l *LocalRuntime) Close() error { return nil }
