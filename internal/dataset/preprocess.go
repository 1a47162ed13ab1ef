package dataset

import (
	"fmt"
	"strings"

	"labd/internal/tabular"
	"labd/pkg/types"
)

// Canonical column names of a clean frame.
const (
	ColSource     = "source"
	ColTarget     = "target"
	ColPrediction = "prediction"
)

// Preprocessor turns a raw frame into the canonical two-column clean frame.
// Analyze is pure; Transform is a pure function of the raw frame, so calling
// it twice yields the same clean frame.
type Preprocessor interface {
	Analyze() types.DatasetStats
	Transform() (*tabular.Frame, error)
}

// analyzeRaw computes the descriptive statistics over a raw frame, measuring
// text lengths on sourceCol.
func analyzeRaw(raw *tabular.Frame, sourceCol string) types.DatasetStats {
	stats := types.DatasetStats{
		NumSamples: raw.NumRows(),
		NumColumns: raw.NumCols(),
		Duplicates: raw.Duplicates(),
		EmptyRows:  raw.MissingRows(),
	}
	texts, err := raw.Col(sourceCol)
	if err != nil {
		return stats
	}
	first := true
	for _, s := range texts {
		if s == "" {
			continue
		}
		n := len(s)
		if first || n < stats.SampleMinLen {
			stats.SampleMinLen = n
		}
		if n > stats.SampleMaxLen {
			stats.SampleMaxLen = n
		}
		first = false
	}
	return stats
}

// ReviewPreprocessor prepares the movie-review sentiment dataset: reviews in
// "content", three-way textual grade in "grade3".
type ReviewPreprocessor struct {
	raw *tabular.Frame
}

// NewReviewPreprocessor wraps a raw review frame.
func NewReviewPreprocessor(raw *tabular.Frame) *ReviewPreprocessor {
	return &ReviewPreprocessor{raw: raw}
}

// Analyze implements Preprocessor.
func (p *ReviewPreprocessor) Analyze() types.DatasetStats {
	return analyzeRaw(p.raw, "content")
}

// sentimentCodes is the historical grade3 encoding. The downstream decode
// step depends on exactly these codes.
var sentimentCodes = map[string]string{
	"Good":    "1",
	"Bad":     "2",
	"Neutral": "0",
}

// Transform implements Preprocessor: keeps content/grade3 as source/target,
// drops missing rows, encodes the three sentiment labels as integer codes
// and renumbers rows densely.
func (p *ReviewPreprocessor) Transform() (*tabular.Frame, error) {
	f := p.raw.Drop(
		"part", "movie_name", "review_id", "author", "date", "title", "grade10",
	)
	f, err := renameColumns(f, map[string]string{"grade3": ColTarget, "content": ColSource})
	if err != nil {
		return nil, err
	}
	f = f.DropMissing()
	// Rows with a grade outside the three known labels carry no usable
	// target and are removed alongside the missing ones.
	targetIdx := -1
	for i, c := range f.Columns() {
		if c == ColTarget {
			targetIdx = i
		}
	}
	f = f.Filter(func(row []string) bool {
		_, ok := sentimentCodes[row[targetIdx]]
		return ok
	})
	f, err = f.MapColumn(ColTarget, func(s string) string { return sentimentCodes[s] })
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ArticlePreprocessor prepares the news summarization dataset: articles with
// reference highlights.
type ArticlePreprocessor struct {
	raw *tabular.Frame
}

// NewArticlePreprocessor wraps a raw article frame.
func NewArticlePreprocessor(raw *tabular.Frame) *ArticlePreprocessor {
	return &ArticlePreprocessor{raw: raw}
}

// Analyze implements Preprocessor.
func (p *ArticlePreprocessor) Analyze() types.DatasetStats {
	return analyzeRaw(p.raw, "article")
}

// Transform implements Preprocessor: keeps article/highlights as
// source/target, removes duplicates and the wire-agency prefix.
func (p *ArticlePreprocessor) Transform() (*tabular.Frame, error) {
	f := p.raw.Drop("id")
	f, err := renameColumns(f, map[string]string{"highlights": ColTarget, "article": ColSource})
	if err != nil {
		return nil, err
	}
	f = f.DropDuplicates()
	f, err = f.MapColumn(ColSource, func(s string) string {
		return strings.ReplaceAll(s, "(CNN)", "")
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func renameColumns(f *tabular.Frame, renames map[string]string) (*tabular.Frame, error) {
	for old, new := range renames {
		var err error
		f, err = f.Rename(old, new)
		if err != nil {
			return nil, fmt.Errorf("rename %s: %w", old, err)
		}
	}
	return f, nil
}
