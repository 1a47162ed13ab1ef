package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Settings holds the per-task lab configuration. Zero values mean
// "unspecified" and are replaced by defaults in the CLI layer; the SFT
// hyperparameters deliberately stay unset when absent, the fine-tuning
// pipeline treats that as a skip.
type Settings struct {
	// Task is "classify" or "summarize".
	Task       string     `json:"task" yaml:"task" toml:"task"`
	Parameters Parameters `json:"parameters" yaml:"parameters" toml:"parameters"`
	SFT        SFTParams  `json:"sft_parameters" yaml:"sft_parameters" toml:"sft_parameters"`
}

// Parameters configures import, inference and evaluation.
type Parameters struct {
	Dataset    string   `json:"dataset" yaml:"dataset" toml:"dataset"`
	Split      string   `json:"split" yaml:"split" toml:"split"`
	Model      string   `json:"model" yaml:"model" toml:"model"`
	Metrics    []string `json:"metrics" yaml:"metrics" toml:"metrics"`
	MaxLength  int      `json:"max_length" yaml:"max_length" toml:"max_length"`
	BatchSize  int      `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	Device     string   `json:"device" yaml:"device" toml:"device"`
	BackendURL string   `json:"backend_url" yaml:"backend_url" toml:"backend_url"`
}

// SFTParams configures the fine-tuning run. All four core hyperparameters
// must be set for fine-tuning to happen at all.
type SFTParams struct {
	FinetunedModelPath string  `json:"finetuned_model_path" yaml:"finetuned_model_path" toml:"finetuned_model_path"`
	MaxFineTuningSteps int     `json:"max_fine_tuning_steps" yaml:"max_fine_tuning_steps" toml:"max_fine_tuning_steps"`
	BatchSize          int     `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	LearningRate       float64 `json:"learning_rate" yaml:"learning_rate" toml:"learning_rate"`
	Device             string  `json:"device" yaml:"device" toml:"device"`
}

// Load reads a settings file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Settings, error) {
	var cfg Settings
	if path == "" {
		return cfg, fmt.Errorf("empty settings path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported settings extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unset inference parameters. SFT hyperparameters are
// intentionally not defaulted.
func (s *Settings) ApplyDefaults() {
	if s.Parameters.Split == "" {
		// The summarization lab evaluates on the held-out split; the
		// classification lab works on the training split.
		if s.Task == "summarize" {
			s.Parameters.Split = "test"
		} else {
			s.Parameters.Split = "train"
		}
	}
	if s.Parameters.MaxLength == 0 {
		s.Parameters.MaxLength = 120
	}
	if s.Parameters.BatchSize == 0 {
		s.Parameters.BatchSize = 64
	}
	if s.Parameters.Device == "" {
		s.Parameters.Device = "cpu"
	}
	if s.SFT.Device == "" {
		s.SFT.Device = s.Parameters.Device
	}
}
