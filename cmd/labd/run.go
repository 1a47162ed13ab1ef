package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"labd/internal/dataset"
	"labd/internal/evaluate"
	"labd/internal/pipeline"
)

// buildRunCmd wires the full lab run: obtain, preprocess, analyze, infer the
// dataset, persist predictions and score them.
func buildRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured task end to end and evaluate the predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := commandSetup(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			ctx := cmd.Context()

			clean, stats, err := obtainClean(ctx, s, log)
			if err != nil {
				return err
			}
			printJSON("dataset_stats", stats)

			ds := dataset.NewTaskDataset(clean).Head(runSampleCount)
			p, closer, err := newTaskPipeline(s, s.Parameters.Model, ds, s.Parameters.BatchSize, log)
			if err != nil {
				return err
			}
			defer closer.Close()

			report, err := p.AnalyzeModel(ctx)
			switch {
			case err == nil:
				printJSON("model_report", report)
			case pipeline.IsWrongModel(err):
				// In-process gguf runtimes expose no structural properties.
				log.Warn().Err(err).Msg("model analysis skipped")
			default:
				return err
			}

			sample, err := p.InferSample(ctx, ds.Item(0))
			if err != nil {
				return err
			}
			log.Info().Str("prediction", sample).Msg("sample inferred")

			preds, err := p.InferDataset(ctx)
			if err != nil {
				return err
			}
			if err := pipeline.WritePredictions(preds, out); err != nil {
				return err
			}
			log.Info().Str("path", out).Int("rows", preds.NumRows()).Msg("predictions persisted")

			metrics, err := parseMetrics(s.Parameters.Metrics)
			if err != nil {
				return err
			}
			ev, err := evaluate.NewTaskEvaluator(out, metrics, log)
			if err != nil {
				return err
			}
			scores, err := ev.Run()
			if err != nil {
				return err
			}
			printJSON("scores", scores)
			return nil
		},
	}
	cmd.Flags().String("out", predictionsPath, "Predictions CSV path")
	return cmd
}

// printJSON writes one labeled JSON document to stdout.
func printJSON(label string, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{label: v})
}
