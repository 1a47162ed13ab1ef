package main

import (
	"github.com/spf13/cobra"
)

// buildAnalyzeCmd reports dataset statistics and model properties without
// running any inference over the dataset.
func buildAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Report dataset statistics and model properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := commandSetup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			_, stats, err := obtainClean(ctx, s, log)
			if err != nil {
				return err
			}
			printJSON("dataset_stats", stats)

			p, closer, err := newTaskPipeline(s, s.Parameters.Model, nil, 1, log)
			if err != nil {
				return err
			}
			defer closer.Close()
			report, err := p.AnalyzeModel(ctx)
			if err != nil {
				return err
			}
			printJSON("model_report", report)
			return nil
		},
	}
}
