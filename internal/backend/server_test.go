package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func fakeModelServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logits := make([][]float64, len(req.Texts))
		for i := range req.Texts {
			logits[i] = []float64{0.1, 0.9, 0.2}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"logits": logits})
	})
	mux.HandleFunc("/completion", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt   string `json:"prompt"`
			NPredict int    `json:"n_predict"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{"content": "summary of " + req.Prompt})
	})
	mux.HandleFunc("/tokenize", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		toks := make([]int, 0, len(req.Content))
		for i := range req.Content {
			toks = append(toks, int(req.Content[i]))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"tokens": toks})
	})
	mux.HandleFunc("/props", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ModelProps{
			MaxPositionEmbeddings: 512,
			VocabSize:             30522,
			NumTrainableParams:    4385931,
			ParamBytes:            17543724,
			MaxLength:             20,
			NumLabels:             3,
		})
	})
	return httptest.NewServer(mux)
}

func newTestRuntime(t *testing.T) *ServerRuntime {
	t.Helper()
	srv := fakeModelServer(t)
	t.Cleanup(srv.Close)
	return NewServerRuntime(srv.URL, "test-model", "", 5*time.Second, time.Second)
}

func TestServerClassify(t *testing.T) {
	rt := newTestRuntime(t)
	logits, err := rt.Classify(context.Background(), []string{"good", "bad"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(logits) != 2 || !reflect.DeepEqual(logits[0], []float64{0.1, 0.9, 0.2}) {
		t.Fatalf("unexpected logits: %v", logits)
	}
}

func TestServerGenerateOrder(t *testing.T) {
	rt := newTestRuntime(t)
	out, err := rt.Generate(context.Background(), []string{"a", "b"}, 16)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(out, []string{"summary of a", "summary of b"}) {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestServerEncodeAndDescribe(t *testing.T) {
	rt := newTestRuntime(t)
	toks, err := rt.Encode(context.Background(), "hi")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("unexpected tokens: %v", toks)
	}
	props, err := rt.Describe(context.Background())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if props.VocabSize != 30522 || props.NumLabels != 3 {
		t.Fatalf("unexpected props: %+v", props)
	}
}

func TestServerUnreachable(t *testing.T) {
	rt := NewServerRuntime("http://127.0.0.1:1", "m", "", time.Second, 100*time.Millisecond)
	_, err := rt.Classify(context.Background(), []string{"x"})
	if err == nil || !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency-unavailable error, got %v", err)
	}
}

func TestLocalRuntimeStub(t *testing.T) {
	if localBuilt {
		t.Skip("built with llama tag")
	}
	if _, err := NewLocalRuntime("model.gguf", 512, 4); !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency-unavailable error, got %v", err)
	}
}
