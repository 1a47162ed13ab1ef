package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "settings.json", `{
  "task": "classify",
  "parameters": {
    "dataset": "blinoff/kinopoisk",
    "model": "tape/sentiment-bert",
    "metrics": ["accuracy", "f1"],
    "batch_size": 64,
    "device": "cpu"
  }
}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Task != "classify" || cfg.Parameters.Dataset != "blinoff/kinopoisk" || cfg.Parameters.Model != "tape/sentiment-bert" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.Parameters.Metrics) != 2 || cfg.Parameters.Metrics[1] != "f1" {
		t.Fatalf("unexpected metrics: %v", cfg.Parameters.Metrics)
	}
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "settings.yaml",
		"task: summarize\nparameters:\n  dataset: cnn_dailymail\n  model: t5-small\n  metrics: [bleu, rouge]\nsft_parameters:\n  finetuned_model_path: dist/t5-small\n  max_fine_tuning_steps: 50\n  batch_size: 3\n  learning_rate: 0.001\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Task != "summarize" || cfg.SFT.MaxFineTuningSteps != 50 || cfg.SFT.LearningRate != 0.001 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "settings.toml",
		"task=\"classify\"\n[parameters]\ndataset=\"d\"\nmodel=\"m\"\nmetrics=[\"accuracy\"]\nmax_length=120\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Parameters.Model != "m" || cfg.Parameters.MaxLength != 120 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "settings.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load(filepath.Join(d, "missing.json")); err == nil {
		t.Fatalf("expected error on missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Settings
	cfg.ApplyDefaults()
	if cfg.Parameters.MaxLength != 120 || cfg.Parameters.BatchSize != 64 || cfg.Parameters.Device != "cpu" {
		t.Fatalf("unexpected defaults: %+v", cfg.Parameters)
	}
	// SFT hyperparameters stay unset so the fine-tuning guard can skip.
	if cfg.SFT.MaxFineTuningSteps != 0 || cfg.SFT.FinetunedModelPath != "" {
		t.Fatalf("sft params must stay zero: %+v", cfg.SFT)
	}
	if cfg.SFT.Device != "cpu" {
		t.Fatalf("sft device should inherit: %+v", cfg.SFT)
	}
}

func TestApplyDefaultsSplitPerTask(t *testing.T) {
	classify := Settings{Task: "classify"}
	classify.ApplyDefaults()
	if classify.Parameters.Split != "train" {
		t.Fatalf("classify split = %q, want train", classify.Parameters.Split)
	}

	summarize := Settings{Task: "summarize"}
	summarize.ApplyDefaults()
	if summarize.Parameters.Split != "test" {
		t.Fatalf("summarize split = %q, want test", summarize.Parameters.Split)
	}

	explicit := Settings{Task: "summarize"}
	explicit.Parameters.Split = "validation"
	explicit.ApplyDefaults()
	if explicit.Parameters.Split != "validation" {
		t.Fatalf("explicit split overridden: %q", explicit.Parameters.Split)
	}
}
