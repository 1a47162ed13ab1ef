// Package evaluate scores a persisted predictions file against its
// references. Scorers are loaded once per evaluator from the enumerated
// metric set the caller requests.
package evaluate

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"labd/internal/dataset"
	"labd/internal/tabular"
)

// Metric enumerates the supported metric identifiers.
type Metric string

const (
	MetricAccuracy Metric = "accuracy"
	MetricF1       Metric = "f1"
	MetricBLEU     Metric = "bleu"
	MetricROUGE    Metric = "rouge"
)

// rougeSeed makes the ROUGE bootstrap aggregation deterministic.
const rougeSeed = 77

// ParseMetric validates a metric name from configuration.
func ParseMetric(name string) (Metric, error) {
	switch Metric(name) {
	case MetricAccuracy, MetricF1, MetricBLEU, MetricROUGE:
		return Metric(name), nil
	default:
		return "", fmt.Errorf("unknown metric %q", name)
	}
}

// Scorer computes one scalar over reference/prediction pairs.
type Scorer interface {
	Name() string
	Score(references, predictions []string) (float64, error)
}

// newScorer builds the scorer for a metric id.
func newScorer(m Metric) (Scorer, error) {
	switch m {
	case MetricAccuracy:
		return accuracyScorer{}, nil
	case MetricF1:
		return f1Scorer{}, nil
	case MetricBLEU:
		return bleuScorer{}, nil
	case MetricROUGE:
		return newROUGEScorer(rougeSeed), nil
	default:
		return nil, fmt.Errorf("unknown metric %q", m)
	}
}

// TaskEvaluator reads a predictions file and scores it with the loaded
// metric set.
type TaskEvaluator struct {
	dataPath string
	scorers  []Scorer
	log      zerolog.Logger
}

// NewTaskEvaluator loads one scorer per requested metric.
func NewTaskEvaluator(dataPath string, metrics []Metric, log zerolog.Logger) (*TaskEvaluator, error) {
	e := &TaskEvaluator{dataPath: dataPath, log: log}
	for _, m := range metrics {
		s, err := newScorer(m)
		if err != nil {
			return nil, err
		}
		e.scorers = append(e.scorers, s)
	}
	return e, nil
}

// Run reads the predictions CSV and returns metric name -> score. A file
// with no prediction rows yields a nil map.
func (e *TaskEvaluator) Run() (map[string]float64, error) {
	file, err := os.Open(e.dataPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	frame, err := tabular.ReadCSV(file)
	if err != nil {
		return nil, err
	}
	if frame.NumRows() == 0 {
		return nil, nil
	}
	refs, err := frame.Col(dataset.ColTarget)
	if err != nil {
		return nil, err
	}
	preds, err := frame.Col(dataset.ColPrediction)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(e.scorers))
	for _, s := range e.scorers {
		v, err := s.Score(refs, preds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		out[s.Name()] = v
		e.log.Info().Str("metric", s.Name()).Float64("score", v).Msg("metric computed")
	}
	return out, nil
}
