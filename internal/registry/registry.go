// Package registry locates fine-tuned model artifacts persisted on disk.
// A persisted model is a directory holding the merged weights next to the
// serialized model config; the tokenizer files are optional but recorded.
package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"labd/internal/common/fsutil"
)

// Artifact describes one persisted model directory.
type Artifact struct {
	Name         string
	Path         string
	SizeBytes    int64
	HasTokenizer bool
}

// weight file names written by the trainer, checked in order.
var weightFiles = []string{"model.safetensors", "pytorch_model.bin"}

// ScanDir lists the persisted model directories under dir. Directories
// without a model config are skipped; a missing dir yields an empty slice.
func ScanDir(dir string) ([]Artifact, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var artifacts []Artifact
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(abs, e.Name())
		a, ok, err := inspect(p)
		if err != nil {
			return nil, err
		}
		if ok {
			artifacts = append(artifacts, a)
		}
	}
	return artifacts, nil
}

// Load inspects a single model directory.
func Load(dir string) (Artifact, bool, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return Artifact{}, false, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return Artifact{}, false, fmt.Errorf("abs path: %w", err)
	}
	return inspect(abs)
}

// inspect reports whether dir holds a complete persisted model: the config
// plus at least one known weight file.
func inspect(dir string) (Artifact, bool, error) {
	if !fsutil.PathExists(filepath.Join(dir, "config.json")) {
		return Artifact{}, false, nil
	}
	var size int64
	hasWeights := false
	for _, w := range weightFiles {
		info, err := os.Stat(filepath.Join(dir, w))
		if err != nil {
			continue
		}
		hasWeights = true
		size += info.Size()
	}
	if !hasWeights {
		return Artifact{}, false, nil
	}
	return Artifact{
		Name:         filepath.Base(dir),
		Path:         dir,
		SizeBytes:    size,
		HasTokenizer: fsutil.PathExists(filepath.Join(dir, "tokenizer_config.json")),
	}, true, nil
}
