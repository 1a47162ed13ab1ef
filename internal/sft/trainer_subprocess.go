package sft

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"

	"labd/internal/backend"
	"labd/internal/common/fsutil"
)

// SubprocessTrainer shells out to an external trainer binary for the
// optimization loop. The tokenized dataset is handed over as a JSONL file;
// the trainer is responsible for the step loop, the adapter merge and for
// persisting the merged model plus tokenizer under the output directory.
type SubprocessTrainer struct {
	bin string
	log zerolog.Logger
}

// NewSubprocessTrainer builds a trainer around the given binary.
func NewSubprocessTrainer(bin string, log zerolog.Logger) *SubprocessTrainer {
	return &SubprocessTrainer{bin: bin, log: log}
}

type trainSample struct {
	InputIDs      []int `json:"input_ids"`
	AttentionMask []int `json:"attention_mask"`
	Labels        []int `json:"labels"`
}

// Train implements Trainer.
func (t *SubprocessTrainer) Train(ctx context.Context, spec TrainSpec) error {
	if _, err := exec.LookPath(t.bin); err != nil {
		return backend.ErrDependencyUnavailable("trainer binary not found: " + t.bin)
	}
	if err := fsutil.EnsureDir(spec.OutputDir); err != nil {
		return err
	}
	dataPath, err := t.writeDataset(spec)
	if err != nil {
		return err
	}
	defer os.Remove(dataPath)

	args := []string{
		"--model", spec.ModelName,
		"--data", dataPath,
		"--output-dir", spec.OutputDir,
		"--max-steps", strconv.Itoa(spec.MaxSteps),
		"--batch-size", strconv.Itoa(spec.BatchSize),
		"--learning-rate", strconv.FormatFloat(spec.LearningRate, 'g', -1, 64),
		"--device", spec.Device,
		"--lora-rank", strconv.Itoa(spec.LoRA.Rank),
		"--lora-alpha", strconv.Itoa(spec.LoRA.Alpha),
		"--lora-dropout", strconv.FormatFloat(spec.LoRA.Dropout, 'g', -1, 64),
		"--save-strategy", "no",
		"--merge-adapter",
		"--save-tokenizer",
	}
	cmd := exec.CommandContext(ctx, t.bin, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(stderr)
	for sc.Scan() {
		t.log.Debug().Str("trainer", t.bin).Msg(sc.Text())
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("trainer exited: %w", err)
	}
	return nil
}

// writeDataset dumps the tokenized samples as JSONL next to the output dir.
func (t *SubprocessTrainer) writeDataset(spec TrainSpec) (string, error) {
	f, err := os.CreateTemp("", "labd-train-*.jsonl")
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for i := 0; i < spec.Dataset.Len(); i++ {
		s := spec.Dataset.Item(i)
		if err := enc.Encode(trainSample{
			InputIDs:      s.InputIDs,
			AttentionMask: s.AttentionMask,
			Labels:        s.Labels,
		}); err != nil {
			return "", err
		}
	}
	return f.Name(), nil
}
