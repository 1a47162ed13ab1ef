package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"labd/internal/config"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
}

// loadSettings reads and validates the settings file.
func loadSettings(path string) (config.Settings, error) {
	s, err := config.Load(path)
	if err != nil {
		return s, err
	}
	s.ApplyDefaults()
	switch s.Task {
	case "classify", "summarize":
	default:
		return s, fmt.Errorf("unsupported task %q (want classify or summarize)", s.Task)
	}
	if s.Parameters.Dataset == "" || s.Parameters.Model == "" {
		return s, fmt.Errorf("settings must name a dataset and a model")
	}
	return s, nil
}

func main() {
	settingsPath := envOr("LABD_SETTINGS", "settings.yaml")
	logLevel := envOr("LABD_LOG_LEVEL", "info")

	root := &cobra.Command{
		Use:           "labd",
		Short:         "Text classification and summarization lab pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("settings", settingsPath, "Path to the settings file (.json/.yaml/.toml)")
	root.PersistentFlags().String("log-level", logLevel, "Log level: debug|info|warn|error")

	root.AddCommand(buildRunCmd(), buildFinetuneCmd(), buildServeCmd(), buildAnalyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "labd:", err)
		os.Exit(1)
	}
}

// commandSetup resolves the shared persistent flags of a subcommand.
func commandSetup(cmd *cobra.Command) (config.Settings, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("settings")
	level, _ := cmd.Flags().GetString("log-level")
	log := newLogger(level)
	s, err := loadSettings(path)
	if err != nil {
		return s, log, err
	}
	return s, log, nil
}
