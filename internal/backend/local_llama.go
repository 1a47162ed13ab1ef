//go:build llama

package backend

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// localBuilt indicates this binary was compiled with real llama support.
var localBuilt = true

// LocalRuntime runs generation in-process through go-llama.cpp. Only the
// generation task is supported locally; classification heads need a server
// runtime.
type LocalRuntime struct {
	model   *llama.LLama
	name    string
	ctxSize int
	threads int
}

// NewLocalRuntime loads a gguf model from disk.
func NewLocalRuntime(modelPath string, ctxSize, threads int) (*LocalRuntime, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	m, err := llama.New(modelPath, llama.SetContext(ctxSize))
	if err != nil {
		return nil, err
	}
	return &LocalRuntime{model: m, name: modelPath, ctxSize: ctxSize, threads: threads}, nil
}

// Model returns the model path this runtime loaded.
func (l *LocalRuntime) Model() string { return l.name }

// Generate implements Generator.
func (l *LocalRuntime) Generate(ctx context.Context, texts []string, maxLength int) ([]string, error) {
	if l.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		l.model.SetTokenCallback(func(string) bool { return ctx.Err() == nil })
		res, err := l.model.Predict(text,
			llama.SetTokens(maxLength),
			llama.SetThreads(maxInt(1, l.threads)),
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Encode implements Tokenizer.
func (l *LocalRuntime) Encode(ctx context.Context, text string) ([]int, error) {
	if l.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	n, toks, err := l.model.TokenizeString(text, llama.SetTokens(l.ctxSize))
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, n)
	for _, t := range toks[:n] {
		out = append(out, int(t))
	}
	return out, nil
}

// Close frees the native model.
func (l *LocalRuntime) Close() error {
	if l.model != nil {
		l.model.Free()
		l.model = nil
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
