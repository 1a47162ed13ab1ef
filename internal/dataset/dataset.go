package dataset

import (
	"context"
	"fmt"

	"labd/internal/backend"
	"labd/internal/tabular"
)

// TaskDataset is the indexable view over a clean frame the batching loop
// reads from.
type TaskDataset struct {
	data *tabular.Frame
}

// NewTaskDataset wraps a clean frame. The frame is shared, not copied; the
// dataset's lifetime is bound to it.
func NewTaskDataset(data *tabular.Frame) *TaskDataset {
	return &TaskDataset{data: data}
}

// Len returns the number of items.
func (d *TaskDataset) Len() int { return d.data.NumRows() }

// Item returns the source text at index i. Out-of-range indices panic like
// slice access.
func (d *TaskDataset) Item(i int) string {
	v, err := d.data.Cell(i, ColSource)
	if err != nil {
		panic(err)
	}
	return v
}

// Data exposes the underlying clean frame.
func (d *TaskDataset) Data() *tabular.Frame { return d.data }

// Head returns a dataset over the first n rows.
func (d *TaskDataset) Head(n int) *TaskDataset {
	return &TaskDataset{data: d.data.Head(n)}
}

// Sample is one pre-tokenized training example: fixed-length input ids with
// the matching attention mask, and the target token ids as labels.
type Sample struct {
	InputIDs      []int
	AttentionMask []int
	Labels        []int
}

// TokenizedTaskDataset holds pre-computed encodings for the training loop.
type TokenizedTaskDataset struct {
	samples []Sample
}

// NewTokenizedTaskDataset tokenizes every source/target pair of the clean
// frame up front, truncating or padding to maxLength.
func NewTokenizedTaskDataset(ctx context.Context, data *tabular.Frame, tok backend.Tokenizer, maxLength int) (*TokenizedTaskDataset, error) {
	sources, err := data.Col(ColSource)
	if err != nil {
		return nil, err
	}
	targets, err := data.Col(ColTarget)
	if err != nil {
		return nil, err
	}
	out := &TokenizedTaskDataset{samples: make([]Sample, 0, len(sources))}
	for i := range sources {
		src, mask, err := encodeFixed(ctx, tok, sources[i], maxLength)
		if err != nil {
			return nil, fmt.Errorf("tokenize row %d: %w", i, err)
		}
		labels, _, err := encodeFixed(ctx, tok, targets[i], maxLength)
		if err != nil {
			return nil, fmt.Errorf("tokenize row %d target: %w", i, err)
		}
		out.samples = append(out.samples, Sample{InputIDs: src, AttentionMask: mask, Labels: labels})
	}
	return out, nil
}

// Len returns the number of samples.
func (d *TokenizedTaskDataset) Len() int { return len(d.samples) }

// Item returns the sample at index i.
func (d *TokenizedTaskDataset) Item(i int) Sample { return d.samples[i] }

// padID fills the tail of a short encoding.
const padID = 0

// encodeFixed truncates or pads ids to exactly maxLength and builds the
// attention mask (1 for real tokens, 0 for padding).
func encodeFixed(ctx context.Context, tok backend.Tokenizer, text string, maxLength int) (ids, mask []int, err error) {
	raw, err := tok.Encode(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) > maxLength {
		raw = raw[:maxLength]
	}
	ids = make([]int, maxLength)
	mask = make([]int, maxLength)
	for i := range ids {
		if i < len(raw) {
			ids[i] = raw[i]
			mask[i] = 1
		} else {
			ids[i] = padID
		}
	}
	return ids, mask, nil
}
