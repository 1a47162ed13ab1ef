package pipeline

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"labd/internal/backend"
	"labd/internal/dataset"
	"labd/internal/tabular"
	"labd/pkg/types"
)

// ClassificationPipeline infers a sequence-classification model over the
// sentiment dataset.
type ClassificationPipeline struct {
	base
	runtime backend.Classifier
}

// NewClassificationPipeline binds a classification runtime to a dataset.
func NewClassificationPipeline(modelName string, ds *dataset.TaskDataset, maxLength, batchSize int, device string, runtime backend.Classifier, log zerolog.Logger) *ClassificationPipeline {
	return &ClassificationPipeline{
		base: base{
			modelName: modelName,
			dataset:   ds,
			maxLength: maxLength,
			batchSize: batchSize,
			device:    device,
			task:      "classify",
			log:       log,
		},
		runtime: runtime,
	}
}

// AnalyzeModel reports structural model properties via the runtime's dummy
// forward pass. A runtime without introspection support is the wrong kind
// of model for this operation.
func (p *ClassificationPipeline) AnalyzeModel(ctx context.Context) (types.ModelReport, error) {
	intro, ok := p.runtime.(backend.Introspector)
	if !ok {
		return types.ModelReport{}, ErrWrongModel("runtime does not expose model properties")
	}
	props, err := intro.Describe(ctx)
	if err != nil {
		return types.ModelReport{}, err
	}
	return reportFromProps(props, false), nil
}

// InferSample runs a one-item batch and returns the decoded class code.
func (p *ClassificationPipeline) InferSample(ctx context.Context, sample string) (string, error) {
	if p.runtime == nil {
		return "", ErrNoModel()
	}
	out, err := p.inferBatch(ctx, []string{sample})
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// InferDataset runs the whole dataset through the model in fixed-size
// batches and returns the target/prediction frame, row-aligned with the
// clean frame.
func (p *ClassificationPipeline) InferDataset(ctx context.Context) (*tabular.Frame, error) {
	if p.runtime == nil {
		return nil, ErrNoModel()
	}
	predictions, err := p.inferBatches(ctx, p.inferBatch)
	if err != nil {
		return nil, err
	}
	return p.predictionsFrame(predictions)
}

func (p *ClassificationPipeline) inferBatch(ctx context.Context, batch []string) ([]string, error) {
	if p.runtime == nil {
		return nil, ErrNoModel()
	}
	logits, err := p.runtime.Classify(ctx, batch)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(logits))
	for _, row := range logits {
		out = append(out, decodeClass(argmax(row)))
	}
	return out, nil
}

// argmax returns the index of the highest score, ties going to the first.
func argmax(scores []float64) int {
	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return best
}

// decodeClass maps an arg-max index to the label code used by the
// preprocessing step. Index 0 deliberately decodes to "2": the historical
// encoding swaps those two codes, and predictions must match the references
// produced under that scheme. Do not "fix" this without retraining.
func decodeClass(idx int) string {
	if idx == 0 {
		return "2"
	}
	return strconv.Itoa(idx)
}
