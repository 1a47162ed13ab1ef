package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"labd/pkg/types"
)

type mockService struct {
	task     string
	status   types.StatusResponse
	ready    bool
	inferErr error
	answer   string
	lastReq  types.InferRequest
}

func (m *mockService) Task() string                 { return m.task }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error) {
	m.lastReq = req
	if m.inferErr != nil {
		return types.InferResponse{}, m.inferErr
	}
	return types.InferResponse{Infer: m.answer}, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func postInfer(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestIndexPage(t *testing.T) {
	svc := &mockService{task: "classify"}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("content-type=%s", ct)
	}
	if !strings.Contains(w.Body.String(), "classify") {
		t.Fatalf("page does not mention the task: %q", w.Body.String())
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{
		Task:   "summarize",
		Models: []types.ModelStatus{{Name: "t5-small", Role: "base", State: "ready"}},
	}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Task != "summarize" || len(body.Models) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestInferReturnsPrediction(t *testing.T) {
	svc := &mockService{answer: "1"}
	r := NewMux(svc)
	w := postInfer(t, r, `{"question":"great movie","is_base_model":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.InferResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Infer != "1" {
		t.Fatalf("infer=%q", resp.Infer)
	}
	if !svc.lastReq.IsBaseModel || svc.lastReq.Question != "great movie" {
		t.Fatalf("request not forwarded: %+v", svc.lastReq)
	}
}

func TestInferBadJSON(t *testing.T) {
	r := NewMux(&mockService{})
	if w := postInfer(t, r, "not-json"); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferQuestionRequired(t *testing.T) {
	r := NewMux(&mockService{})
	if w := postInfer(t, r, `{"question":"   "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferUnsupportedMediaType(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewBufferString(`{"question":"hi"}`))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferBodyTooLarge(t *testing.T) {
	r := NewMux(&mockService{})
	big := make([]byte, (1<<20)+10)
	for i := range big {
		big[i] = 'a'
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestInferHTTPErrorMapping(t *testing.T) {
	svc := &mockService{inferErr: mockHTTPError{msg: "too busy", code: http.StatusTooManyRequests}}
	r := NewMux(svc)
	if w := postInfer(t, r, `{"question":"hi"}`); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferGenericErrorMaps500(t *testing.T) {
	svc := &mockService{inferErr: errors.New("boom")}
	r := NewMux(svc)
	if w := postInfer(t, r, `{"question":"hi"}`); w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	r := NewMux(&mockService{ready: false})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}
