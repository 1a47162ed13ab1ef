package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// ServerRuntime talks to a running model server over HTTP. It expects the
// small endpoint set exposed by llama.cpp-style servers plus a scoring route
// for classification heads:
//
//	POST /classify  {"texts": [...]}            -> {"logits": [[...], ...]}
//	POST /completion {"prompt": ..., "n_predict": N} -> {"content": ...}
//	POST /tokenize  {"content": ...}            -> {"tokens": [...]}
//	GET  /props                                 -> ModelProps
type ServerRuntime struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	reqTimeout time.Duration
}

// NewServerRuntime constructs a server-backed runtime for the named model.
func NewServerRuntime(baseURL, model, apiKey string, reqTimeout, connectTimeout time.Duration) *ServerRuntime {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0 on the client: every request carries a context
	// deadline instead, so long generations are not cut off mid-stream.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &ServerRuntime{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: cli,
		reqTimeout: reqTimeout,
	}
}

// Model returns the model identifier this runtime was built for.
func (s *ServerRuntime) Model() string { return s.model }

// Close releases idle connections held by the underlying transport.
func (s *ServerRuntime) Close() error {
	if t, ok := s.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
	return nil
}

type classifyRequest struct {
	Model string   `json:"model,omitempty"`
	Texts []string `json:"texts"`
}

type classifyResponse struct {
	Logits [][]float64 `json:"logits"`
}

// Classify implements Classifier.
func (s *ServerRuntime) Classify(ctx context.Context, texts []string) ([][]float64, error) {
	var out classifyResponse
	if err := s.post(ctx, "/classify", classifyRequest{Model: s.model, Texts: texts}, &out); err != nil {
		return nil, err
	}
	if len(out.Logits) != len(texts) {
		return nil, fmt.Errorf("classify returned %d rows for %d texts", len(out.Logits), len(texts))
	}
	return out.Logits, nil
}

type completionRequest struct {
	Model    string `json:"model,omitempty"`
	Prompt   string `json:"prompt"`
	NPredict int    `json:"n_predict,omitempty"`
}

type completionResponse struct {
	Content string `json:"content"`
}

// Generate implements Generator. Prompts run sequentially; the pipelines are
// single-threaded by design and batch sizes stay small.
func (s *ServerRuntime) Generate(ctx context.Context, texts []string, maxLength int) ([]string, error) {
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		var resp completionResponse
		if err := s.post(ctx, "/completion", completionRequest{Model: s.model, Prompt: text, NPredict: maxLength}, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Content)
	}
	return out, nil
}

type tokenizeRequest struct {
	Content string `json:"content"`
}

type tokenizeResponse struct {
	Tokens []int `json:"tokens"`
}

// Encode implements Tokenizer.
func (s *ServerRuntime) Encode(ctx context.Context, text string) ([]int, error) {
	var out tokenizeResponse
	if err := s.post(ctx, "/tokenize", tokenizeRequest{Content: text}, &out); err != nil {
		return nil, err
	}
	return out.Tokens, nil
}

// Describe implements Introspector.
func (s *ServerRuntime) Describe(ctx context.Context) (ModelProps, error) {
	var props ModelProps
	if err := s.get(ctx, "/props", &props); err != nil {
		return ModelProps{}, err
	}
	return props, nil
}

func (s *ServerRuntime) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

func (s *ServerRuntime) get(ctx context.Context, path string, out any) error {
	return s.do(ctx, http.MethodGet, path, nil, out)
}

func (s *ServerRuntime) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if s.reqTimeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, s.reqTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrDependencyUnavailable("model server unreachable: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.New("model server http error: " + resp.Status + ": " + string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
