package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"labd/internal/backend"
	"labd/internal/dataset"
	"labd/internal/tabular"
	"labd/pkg/types"
)

// GenerationPipeline infers a sequence-to-sequence model over the
// summarization dataset.
type GenerationPipeline struct {
	base
	runtime backend.Generator
}

// NewGenerationPipeline binds a generation runtime to a dataset.
func NewGenerationPipeline(modelName string, ds *dataset.TaskDataset, maxLength, batchSize int, device string, runtime backend.Generator, log zerolog.Logger) *GenerationPipeline {
	return &GenerationPipeline{
		base: base{
			modelName: modelName,
			dataset:   ds,
			maxLength: maxLength,
			batchSize: batchSize,
			device:    device,
			task:      "summarize",
			log:       log,
		},
		runtime: runtime,
	}
}

// AnalyzeModel reports structural model properties via the runtime.
func (p *GenerationPipeline) AnalyzeModel(ctx context.Context) (types.ModelReport, error) {
	intro, ok := p.runtime.(backend.Introspector)
	if !ok {
		return types.ModelReport{}, ErrWrongModel("runtime does not expose model properties")
	}
	props, err := intro.Describe(ctx)
	if err != nil {
		return types.ModelReport{}, err
	}
	return reportFromProps(props, true), nil
}

// InferSample decodes a summary for one source text.
func (p *GenerationPipeline) InferSample(ctx context.Context, sample string) (string, error) {
	if p.runtime == nil {
		return "", ErrNoModel()
	}
	out, err := p.inferBatch(ctx, []string{sample})
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// InferDataset decodes summaries for the whole dataset, preserving row
// order against the reference targets.
func (p *GenerationPipeline) InferDataset(ctx context.Context) (*tabular.Frame, error) {
	if p.runtime == nil {
		return nil, ErrNoModel()
	}
	predictions, err := p.inferBatches(ctx, p.inferBatch)
	if err != nil {
		return nil, err
	}
	return p.predictionsFrame(predictions)
}

func (p *GenerationPipeline) inferBatch(ctx context.Context, batch []string) ([]string, error) {
	if p.runtime == nil {
		return nil, ErrNoModel()
	}
	// Decoding runs up to the configured maximum length; the runtime strips
	// special tokens before returning text.
	return p.runtime.Generate(ctx, batch, p.maxLength)
}
