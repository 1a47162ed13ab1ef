// Package pipeline sequences load-model -> analyze -> infer over a task
// dataset. The two variants (classification, generation) share the batching
// control flow and differ only in how a batch is scored and decoded.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"labd/internal/backend"
	"labd/internal/common/fsutil"
	"labd/internal/dataset"
	"labd/internal/tabular"
	"labd/pkg/types"
)

// Pipeline is the inference surface shared by both task variants. The
// serving layer and the CLI only see this interface.
type Pipeline interface {
	ModelName() string
	AnalyzeModel(ctx context.Context) (types.ModelReport, error)
	InferSample(ctx context.Context, sample string) (string, error)
	InferDataset(ctx context.Context) (*tabular.Frame, error)
}

// base carries the knobs both variants share.
type base struct {
	modelName string
	dataset   *dataset.TaskDataset
	maxLength int
	batchSize int
	device    string
	task      string
	log       zerolog.Logger
}

// ModelName returns the model identifier or path this pipeline loaded.
func (b *base) ModelName() string { return b.modelName }

// inferBatches walks the dataset in fixed-size batches, in row order, and
// collects one prediction per row. The whole walk is synchronous; long runs
// block the caller to completion.
func (b *base) inferBatches(ctx context.Context, infer func(ctx context.Context, batch []string) ([]string, error)) ([]string, error) {
	n := b.dataset.Len()
	predictions := make([]string, 0, n)
	start := time.Now()
	for lo := 0; lo < n; lo += b.batchSize {
		hi := lo + b.batchSize
		if hi > n {
			hi = n
		}
		batch := make([]string, 0, hi-lo)
		for i := lo; i < hi; i++ {
			batch = append(batch, b.dataset.Item(i))
		}
		out, err := infer(ctx, batch)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, out...)
		batchesInferred.WithLabelValues(b.task).Inc()
		samplesInferred.WithLabelValues(b.task).Add(float64(len(out)))
	}
	b.log.Info().
		Str("task", b.task).
		Int("samples", len(predictions)).
		Dur("dur", time.Since(start)).
		Msg("dataset inferred")
	return predictions, nil
}

// predictionsFrame pairs the dataset's original targets with predictions,
// preserving row order.
func (b *base) predictionsFrame(predictions []string) (*tabular.Frame, error) {
	targets, err := b.dataset.Data().Col(dataset.ColTarget)
	if err != nil {
		return nil, err
	}
	out := tabular.New(dataset.ColTarget, dataset.ColPrediction)
	for i := range targets {
		if err := out.Append(targets[i], predictions[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// reportFromProps converts raw runtime properties into the model report,
// deriving shapes from a one-item dummy input of full context length.
func reportFromProps(props backend.ModelProps, generative bool) types.ModelReport {
	in := []int{1, props.MaxPositionEmbeddings}
	report := types.ModelReport{
		InputShape: map[string][]int{
			"input_ids":      in,
			"attention_mask": in,
		},
		EmbeddingSize:      props.MaxPositionEmbeddings,
		NumTrainableParams: props.NumTrainableParams,
		VocabSize:          props.VocabSize,
		Size:               props.ParamBytes,
		MaxContextLength:   props.MaxLength,
	}
	if generative {
		report.OutputShape = []int{1, props.MaxPositionEmbeddings, props.VocabSize}
	} else {
		report.OutputShape = []int{1, props.NumLabels}
	}
	return report
}

// WritePredictions persists a predictions frame as CSV, creating parent
// directories as needed.
func WritePredictions(f *tabular.Frame, path string) error {
	if err := fsutil.EnsureParent(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.WriteCSV(file)
}
