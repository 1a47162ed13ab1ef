package httpapi

import (
	"context"
	"net/http"
	"testing"

	"labd/internal/pipeline"
	"labd/internal/tabular"
	"labd/pkg/types"
)

// fixedPipeline answers every sample with the same prediction.
type fixedPipeline struct {
	name   string
	answer string
	err    error
}

func (f *fixedPipeline) ModelName() string { return f.name }
func (f *fixedPipeline) AnalyzeModel(ctx context.Context) (types.ModelReport, error) {
	return types.ModelReport{}, nil
}
func (f *fixedPipeline) InferSample(ctx context.Context, sample string) (string, error) {
	return f.answer, f.err
}
func (f *fixedPipeline) InferDataset(ctx context.Context) (*tabular.Frame, error) {
	return nil, nil
}

func TestAppPrefersFinetunedModel(t *testing.T) {
	app := NewApp("summarize",
		&fixedPipeline{name: "t5-small", answer: "base summary"},
		&fixedPipeline{name: "dist/model", answer: "tuned summary"},
	)
	resp, err := app.Infer(context.Background(), types.InferRequest{Question: "long article"})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if resp.Infer != "tuned summary" {
		t.Fatalf("infer=%q, want fine-tuned answer", resp.Infer)
	}

	resp, err = app.Infer(context.Background(), types.InferRequest{Question: "long article", IsBaseModel: true})
	if err != nil {
		t.Fatalf("infer base: %v", err)
	}
	if resp.Infer != "base summary" {
		t.Fatalf("infer=%q, want base answer", resp.Infer)
	}
}

func TestAppSingleModelIgnoresFlag(t *testing.T) {
	app := NewApp("classify", &fixedPipeline{name: "clf", answer: "1"}, nil)
	for _, wantBase := range []bool{false, true} {
		resp, err := app.Infer(context.Background(), types.InferRequest{Question: "x", IsBaseModel: wantBase})
		if err != nil {
			t.Fatalf("infer: %v", err)
		}
		if resp.Infer != "1" {
			t.Fatalf("infer=%q", resp.Infer)
		}
	}
}

func TestAppNoModel(t *testing.T) {
	app := NewApp("classify", nil, nil)
	_, err := app.Infer(context.Background(), types.InferRequest{Question: "x"})
	if !pipeline.IsNoModel(err) {
		t.Fatalf("expected no-model error, got %v", err)
	}
	if app.Ready() {
		t.Fatalf("app with no pipelines must not be ready")
	}
}

func TestAppNoModelMapsTo503(t *testing.T) {
	app := NewApp("classify", nil, nil)
	r := NewMux(app)
	w := postInfer(t, r, `{"question":"hi"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestAppStatus(t *testing.T) {
	app := NewApp("summarize",
		&fixedPipeline{name: "t5-small"},
		&fixedPipeline{name: "dist/model"},
	)
	st := app.Status()
	if st.Task != "summarize" || len(st.Models) != 2 {
		t.Fatalf("status: %+v", st)
	}
	if st.Models[0].Role != "base" || st.Models[1].Role != "finetuned" {
		t.Fatalf("roles: %+v", st.Models)
	}
	for _, m := range st.Models {
		if m.State != "ready" {
			t.Fatalf("state: %+v", m)
		}
	}
	if !app.Ready() {
		t.Fatalf("app with pipelines must be ready")
	}
}
