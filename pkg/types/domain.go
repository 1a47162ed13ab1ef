package types

// DatasetStats holds the descriptive statistics computed over a raw dataset
// before any preprocessing. Field names follow the report emitted by the
// analyze step.
type DatasetStats struct {
	// Total number of rows as downloaded.
	NumSamples int `json:"dataset_number_of_samples"`
	// Number of columns in the raw table.
	NumColumns int `json:"dataset_columns"`
	// Number of fully duplicated rows.
	Duplicates int `json:"dataset_duplicates"`
	// Number of rows with at least one missing value.
	EmptyRows int `json:"dataset_empty_rows"`
	// Length of the shortest non-missing source text, in bytes.
	SampleMinLen int `json:"dataset_sample_min_len"`
	// Length of the longest non-missing source text, in bytes.
	SampleMaxLen int `json:"dataset_sample_max_len"`
}

// ModelReport describes structural properties of a loaded model, obtained
// from the backing runtime via a single dummy forward pass.
type ModelReport struct {
	// InputShape maps input tensor names (input_ids, attention_mask) to shapes.
	InputShape map[string][]int `json:"input_shape"`
	// EmbeddingSize is the maximum position-embedding length.
	EmbeddingSize int `json:"embedding_size"`
	// OutputShape of the final layer for the dummy input.
	OutputShape []int `json:"output_shape"`
	// NumTrainableParams counts parameters with gradients enabled.
	NumTrainableParams int64 `json:"num_trainable_params"`
	// VocabSize of the tokenizer/model.
	VocabSize int `json:"vocab_size"`
	// Size of the serialized parameters in bytes.
	Size int64 `json:"size"`
	// MaxContextLength the model generates up to by default.
	MaxContextLength int `json:"max_context_length"`
}
