package httpapi

import (
	"context"
	"strings"
	"time"

	"labd/internal/pipeline"
	"labd/pkg/types"
)

// App is the explicit service context built once at startup. It owns the
// loaded pipelines for the configured task and is the only state handlers
// touch; nothing model-related lives in package globals.
type App struct {
	task      string
	base      pipeline.Pipeline
	finetuned pipeline.Pipeline
	started   time.Time
}

// NewApp wires the task's pipelines into a service context. finetuned may be
// nil for tasks that serve a single model.
func NewApp(task string, base, finetuned pipeline.Pipeline) *App {
	return &App{
		task:      task,
		base:      base,
		finetuned: finetuned,
		started:   time.Now(),
	}
}

// Infer routes the request to the base or fine-tuned pipeline and returns
// the decoded prediction.
func (a *App) Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error) {
	p := a.pick(req.IsBaseModel)
	if p == nil {
		return types.InferResponse{}, pipeline.ErrNoModel()
	}
	out, err := p.InferSample(ctx, req.Question)
	if err != nil {
		return types.InferResponse{}, err
	}
	return types.InferResponse{Infer: strings.TrimSpace(out)}, nil
}

// pick selects the serving pipeline. The fine-tuned model is the default
// when present; is_base_model forces the base model.
func (a *App) pick(wantBase bool) pipeline.Pipeline {
	if wantBase || a.finetuned == nil {
		return a.base
	}
	return a.finetuned
}

// Status reports the served task and its loaded models.
func (a *App) Status() types.StatusResponse {
	now := time.Now()
	resp := types.StatusResponse{
		Task:           a.task,
		UptimeSeconds:  int64(now.Sub(a.started).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	if a.base != nil {
		resp.Models = append(resp.Models, types.ModelStatus{
			Name: a.base.ModelName(), Role: "base", State: "ready",
		})
	}
	if a.finetuned != nil {
		resp.Models = append(resp.Models, types.ModelStatus{
			Name: a.finetuned.ModelName(), Role: "finetuned", State: "ready",
		})
	}
	return resp
}

// Ready reports whether at least one pipeline can serve.
func (a *App) Ready() bool {
	return a.base != nil || a.finetuned != nil
}

// Task returns the task identifier this app serves.
func (a *App) Task() string { return a.task }
