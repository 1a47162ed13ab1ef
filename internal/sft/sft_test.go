package sft

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"labd/internal/common/fsutil"
	"labd/internal/dataset"
	"labd/internal/tabular"
)

type byteTokenizer struct{}

func (byteTokenizer) Encode(_ context.Context, text string) ([]int, error) {
	out := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = int(text[i]) + 1
	}
	return out, nil
}

func tokenized(t *testing.T) *dataset.TokenizedTaskDataset {
	t.Helper()
	f := tabular.New(dataset.ColSource, dataset.ColTarget)
	_ = f.Append("long article", "short")
	ds, err := dataset.NewTokenizedTaskDataset(context.Background(), f, byteTokenizer{}, 16)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	return ds
}

// recordingTrainer captures the spec it was invoked with.
type recordingTrainer struct {
	calls []TrainSpec
	err   error
}

func (r *recordingTrainer) Train(_ context.Context, spec TrainSpec) error {
	r.calls = append(r.calls, spec)
	return r.err
}

func TestRunSkipsWithUnsetHyperparameters(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist", "model")
	cases := []Params{
		{},
		{FinetunedModelPath: out, BatchSize: 3, LearningRate: 1e-3},                // MaxSteps unset
		{FinetunedModelPath: out, MaxSteps: 50, LearningRate: 1e-3},                // BatchSize unset
		{FinetunedModelPath: out, MaxSteps: 50, BatchSize: 3},                      // LearningRate unset
		{MaxSteps: 50, BatchSize: 3, LearningRate: 1e-3},                           // path unset
	}
	for i, params := range cases {
		tr := &recordingTrainer{}
		p := New("t5-small", tokenized(t), params, tr, zerolog.Nop())
		if err := p.Run(context.Background()); err != nil {
			t.Fatalf("case %d: run returned error: %v", i, err)
		}
		if len(tr.calls) != 0 {
			t.Fatalf("case %d: trainer must not be invoked", i)
		}
	}
	if fsutil.PathExists(out) {
		t.Fatalf("skip must not create the output directory")
	}
}

func TestRunInvokesTrainer(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist", "model")
	params := Params{
		FinetunedModelPath: out,
		MaxSteps:           50,
		BatchSize:          3,
		LearningRate:       1e-3,
		Device:             "cpu",
	}
	tr := &recordingTrainer{}
	p := New("t5-small", tokenized(t), params, tr, zerolog.Nop())
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(tr.calls) != 1 {
		t.Fatalf("trainer calls=%d, want 1", len(tr.calls))
	}
	spec := tr.calls[0]
	if spec.ModelName != "t5-small" || spec.OutputDir != out || spec.MaxSteps != 50 {
		t.Fatalf("spec: %+v", spec)
	}
	if spec.LoRA != (LoRAConfig{Rank: 4, Alpha: 8, Dropout: 0.1}) {
		t.Fatalf("lora config: %+v", spec.LoRA)
	}
	if spec.Dataset == nil || spec.Dataset.Len() != 1 {
		t.Fatalf("dataset not threaded through")
	}
}

func TestRunWrongModel(t *testing.T) {
	params := Params{
		FinetunedModelPath: filepath.Join(t.TempDir(), "m"),
		MaxSteps:           1,
		BatchSize:          1,
		LearningRate:       1e-3,
	}
	p := New("t5-small", tokenized(t), params, nil, zerolog.Nop())
	err := p.Run(context.Background())
	if !IsWrongModel(err) {
		t.Fatalf("expected wrong-model error, got %v", err)
	}
}

func TestRunPropagatesTrainerError(t *testing.T) {
	params := Params{
		FinetunedModelPath: filepath.Join(t.TempDir(), "m"),
		MaxSteps:           1,
		BatchSize:          1,
		LearningRate:       1e-3,
	}
	tr := &recordingTrainer{err: errors.New("diverged")}
	p := New("t5-small", tokenized(t), params, tr, zerolog.Nop())
	if err := p.Run(context.Background()); err == nil {
		t.Fatalf("expected trainer error")
	}
}

func TestSubprocessTrainerMissingBinary(t *testing.T) {
	tr := NewSubprocessTrainer("labd-trainer-that-does-not-exist", zerolog.Nop())
	err := tr.Train(context.Background(), TrainSpec{
		ModelName: "t5-small",
		OutputDir: filepath.Join(t.TempDir(), "out"),
		MaxSteps:  1,
		BatchSize: 1,
		Dataset:   tokenized(t),
	})
	if err == nil {
		t.Fatalf("expected error for missing trainer binary")
	}
}
