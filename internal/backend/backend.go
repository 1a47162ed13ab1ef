// Package backend defines the narrow interfaces the pipelines use to reach
// external model runtimes. Tokenization, forward passes and decoding all
// happen on the other side of these interfaces; this package only carries
// requests and responses.
package backend

import "context"

// Classifier scores a batch of texts and returns one row of class logits per
// input, in input order.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([][]float64, error)
}

// Generator runs autoregressive decoding for each input text, up to
// maxLength tokens, and returns decoded strings with special tokens
// stripped.
type Generator interface {
	Generate(ctx context.Context, texts []string, maxLength int) ([]string, error)
}

// Tokenizer converts text into model token ids.
type Tokenizer interface {
	Encode(ctx context.Context, text string) ([]int, error)
}

// Introspector exposes structural model properties, as reported by the
// runtime after loading the model.
type Introspector interface {
	Describe(ctx context.Context) (ModelProps, error)
}

// ModelProps is the raw property set a runtime reports for its loaded model.
type ModelProps struct {
	// MaxPositionEmbeddings is the positional embedding limit.
	MaxPositionEmbeddings int `json:"max_position_embeddings"`
	// VocabSize of the model.
	VocabSize int `json:"vocab_size"`
	// NumTrainableParams counts parameters with gradients enabled.
	NumTrainableParams int64 `json:"num_trainable_params"`
	// ParamBytes is the serialized parameter size in bytes.
	ParamBytes int64 `json:"param_bytes"`
	// MaxLength is the default generation limit.
	MaxLength int `json:"max_length"`
	// NumLabels is the classification head width; zero for seq2seq models.
	NumLabels int `json:"num_labels,omitempty"`
}
