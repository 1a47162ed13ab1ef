package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"labd/internal/config"
	"labd/internal/dataset"
	"labd/internal/sft"
)

// buildFinetuneCmd wires the LoRA fine-tuning run for the summarization task.
func buildFinetuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finetune",
		Short: "Fine-tune the configured model with a low-rank adapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := commandSetup(cmd)
			if err != nil {
				return err
			}
			trainerBin, _ := cmd.Flags().GetString("trainer-bin")
			return finetune(cmd, s, log, trainerBin)
		},
	}
	cmd.Flags().String("trainer-bin", envOr("LABD_TRAINER_BIN", "labd-trainer"), "External trainer binary")
	return cmd
}

// finetune obtains and tokenizes the training split and hands it to the
// fine-tuning pipeline. With SFT hyperparameters unset this is a no-op.
func finetune(cmd *cobra.Command, s config.Settings, log zerolog.Logger, trainerBin string) error {
	ctx := cmd.Context()
	clean, _, err := obtainClean(ctx, s, log)
	if err != nil {
		return err
	}
	clean = clean.Head(runSampleCount)

	rt, err := newGenRuntime(s, s.Parameters.Model)
	if err != nil {
		return err
	}
	defer rt.Close()
	tokenized, err := dataset.NewTokenizedTaskDataset(ctx, clean, rt, s.Parameters.MaxLength)
	if err != nil {
		return err
	}

	p := sft.New(
		s.Parameters.Model,
		tokenized,
		sft.Params{
			FinetunedModelPath: s.SFT.FinetunedModelPath,
			MaxSteps:           s.SFT.MaxFineTuningSteps,
			BatchSize:          s.SFT.BatchSize,
			LearningRate:       s.SFT.LearningRate,
			Device:             s.SFT.Device,
		},
		sft.NewSubprocessTrainer(trainerBin, log),
		log,
	)
	return p.Run(ctx)
}
