package main

import (
	"context"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"labd/internal/backend"
	"labd/internal/config"
	"labd/internal/dataset"
	"labd/internal/evaluate"
	"labd/internal/pipeline"
	"labd/internal/tabular"
	"labd/pkg/types"
)

// runSampleCount caps the dataset rows pushed through inference in one lab
// run; full splits are far too large for a teaching exercise.
const runSampleCount = 100

// predictionsPath is where a run persists its predictions for evaluation.
const predictionsPath = "dist/predictions.csv"

// splitDatasetRef splits "name:config" settings values (e.g.
// "cnn_dailymail:3.0.0") into the dataset name and its config.
func splitDatasetRef(ref string) (name, cfg string) {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// newPreprocessor picks the task's preprocessor for a raw frame.
func newPreprocessor(task string, raw *tabular.Frame) dataset.Preprocessor {
	if task == "summarize" {
		return dataset.NewArticlePreprocessor(raw)
	}
	return dataset.NewReviewPreprocessor(raw)
}

// obtainClean downloads the configured dataset and preprocesses it into the
// canonical source/target frame, returning the raw-frame statistics as well.
func obtainClean(ctx context.Context, s config.Settings, log zerolog.Logger) (*tabular.Frame, types.DatasetStats, error) {
	name, cfg := splitDatasetRef(s.Parameters.Dataset)
	opts := []dataset.ImporterOption{
		dataset.WithLogger(log),
		dataset.WithSplit(s.Parameters.Split),
		dataset.WithLimit(runSampleCount * 10),
	}
	if cfg != "" {
		opts = append(opts, dataset.WithConfig(cfg))
	}
	im := dataset.NewImporter(name, opts...)
	if err := im.Obtain(ctx); err != nil {
		return nil, types.DatasetStats{}, err
	}
	pre := newPreprocessor(s.Task, im.Raw())
	stats := pre.Analyze()
	clean, err := pre.Transform()
	if err != nil {
		return nil, stats, err
	}
	return clean, stats, nil
}

// newServerRuntime builds the HTTP runtime for the named model.
func newServerRuntime(s config.Settings, model string) *backend.ServerRuntime {
	base := s.Parameters.BackendURL
	if base == "" {
		base = envOr("LABD_BACKEND_URL", "http://127.0.0.1:8081")
	}
	return backend.NewServerRuntime(
		base,
		model,
		envOr("LABD_BACKEND_API_KEY", ""),
		120*time.Second,
		10*time.Second,
	)
}

// localCtxSize is the context window for in-process gguf models.
const localCtxSize = 2048

// genRuntime is what the summarization side needs from a runtime.
type genRuntime interface {
	backend.Generator
	backend.Tokenizer
	io.Closer
}

// newGenRuntime picks the generation runtime for a model reference: a local
// gguf file runs in process (requires the llama build tag), anything else is
// reached through the model server.
func newGenRuntime(s config.Settings, model string) (genRuntime, error) {
	if strings.HasSuffix(strings.ToLower(model), ".gguf") {
		return backend.NewLocalRuntime(model, localCtxSize, runtime.NumCPU())
	}
	return newServerRuntime(s, model), nil
}

// newTaskPipeline binds a runtime to a dataset view for the task. The
// returned closer releases the runtime.
func newTaskPipeline(s config.Settings, model string, ds *dataset.TaskDataset, batchSize int, log zerolog.Logger) (pipeline.Pipeline, io.Closer, error) {
	if s.Task == "summarize" {
		rt, err := newGenRuntime(s, model)
		if err != nil {
			return nil, nil, err
		}
		return pipeline.NewGenerationPipeline(model, ds, s.Parameters.MaxLength, batchSize, s.Parameters.Device, rt, log), rt, nil
	}
	rt := newServerRuntime(s, model)
	return pipeline.NewClassificationPipeline(model, ds, s.Parameters.MaxLength, batchSize, s.Parameters.Device, rt, log), rt, nil
}

// parseMetrics validates the configured metric names.
func parseMetrics(names []string) ([]evaluate.Metric, error) {
	out := make([]evaluate.Metric, 0, len(names))
	for _, n := range names {
		m, err := evaluate.ParseMetric(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
