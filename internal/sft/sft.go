// Package sft orchestrates parameter-efficient fine-tuning: a base
// sequence-to-sequence model wrapped with a low-rank adapter, trained for a
// bounded number of steps, merged and persisted. The actual optimization
// runs inside an external trainer reached through the Trainer interface.
package sft

import (
	"context"

	"github.com/rs/zerolog"

	"labd/internal/dataset"
)

// LoRAConfig describes the low-rank adapter wrapped around the base model.
type LoRAConfig struct {
	Rank    int
	Alpha   int
	Dropout float64
}

// DefaultLoRA is the adapter configuration used by the summarization lab.
func DefaultLoRA() LoRAConfig {
	return LoRAConfig{Rank: 4, Alpha: 8, Dropout: 0.1}
}

// Params are the fine-tuning hyperparameters. All four of
// FinetunedModelPath, BatchSize, MaxSteps and LearningRate must be set;
// otherwise Run skips fine-tuning entirely.
type Params struct {
	FinetunedModelPath string
	MaxSteps           int
	BatchSize          int
	LearningRate       float64
	Device             string
}

// TrainSpec is everything a trainer needs for one bounded-step run. The
// trainer owns the model for the duration of Train, merges the adapter into
// the base weights and persists model plus tokenizer under OutputDir.
// Intermediate checkpoints are never saved.
type TrainSpec struct {
	ModelName    string
	OutputDir    string
	MaxSteps     int
	BatchSize    int
	LearningRate float64
	Device       string
	LoRA         LoRAConfig
	Dataset      *dataset.TokenizedTaskDataset
}

// Trainer executes the training loop against an external runtime.
type Trainer interface {
	Train(ctx context.Context, spec TrainSpec) error
}

// SFTPipeline wires a base model, a tokenized dataset and a trainer.
type SFTPipeline struct {
	modelName string
	dataset   *dataset.TokenizedTaskDataset
	params    Params
	lora      LoRAConfig
	trainer   Trainer
	log       zerolog.Logger
}

// New builds a fine-tuning pipeline with the default adapter configuration.
func New(modelName string, ds *dataset.TokenizedTaskDataset, params Params, trainer Trainer, log zerolog.Logger) *SFTPipeline {
	return &SFTPipeline{
		modelName: modelName,
		dataset:   ds,
		params:    params,
		lora:      DefaultLoRA(),
		trainer:   trainer,
		log:       log,
	}
}

// Run fine-tunes the model. With any core hyperparameter unset it returns
// nil without side effects: an intentional skip, not a failure.
func (p *SFTPipeline) Run(ctx context.Context) error {
	if p.params.FinetunedModelPath == "" ||
		p.params.BatchSize == 0 ||
		p.params.MaxSteps == 0 ||
		p.params.LearningRate == 0 {
		p.log.Info().Str("model", p.modelName).Msg("fine-tuning skipped: hyperparameters unset")
		return nil
	}
	if p.trainer == nil {
		return errWrongModel("no trainable model wrapped")
	}
	spec := TrainSpec{
		ModelName:    p.modelName,
		OutputDir:    p.params.FinetunedModelPath,
		MaxSteps:     p.params.MaxSteps,
		BatchSize:    p.params.BatchSize,
		LearningRate: p.params.LearningRate,
		Device:       p.params.Device,
		LoRA:         p.lora,
		Dataset:      p.dataset,
	}
	p.log.Info().
		Str("model", p.modelName).
		Str("output", spec.OutputDir).
		Int("max_steps", spec.MaxSteps).
		Msg("fine-tuning started")
	if err := p.trainer.Train(ctx, spec); err != nil {
		return err
	}
	trainingSteps.Add(float64(spec.MaxSteps))
	p.log.Info().Str("output", spec.OutputDir).Msg("fine-tuned model persisted")
	return nil
}
