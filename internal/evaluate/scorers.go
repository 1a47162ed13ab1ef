package evaluate

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"unicode"
)

// accuracyScorer computes micro-averaged accuracy over pooled samples.
type accuracyScorer struct{}

func (accuracyScorer) Name() string { return "accuracy" }

func (accuracyScorer) Score(references, predictions []string) (float64, error) {
	if len(references) != len(predictions) {
		return 0, fmt.Errorf("length mismatch: %d references, %d predictions", len(references), len(predictions))
	}
	if len(references) == 0 {
		return 0, nil
	}
	hits := 0
	for i := range references {
		if references[i] == predictions[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(references)), nil
}

// f1Scorer computes micro-averaged F1: true positives, false positives and
// false negatives are pooled over all classes before the harmonic mean.
type f1Scorer struct{}

func (f1Scorer) Name() string { return "f1" }

func (f1Scorer) Score(references, predictions []string) (float64, error) {
	if len(references) != len(predictions) {
		return 0, fmt.Errorf("length mismatch: %d references, %d predictions", len(references), len(predictions))
	}
	classes := map[string]bool{}
	for _, r := range references {
		classes[r] = true
	}
	for _, p := range predictions {
		classes[p] = true
	}
	var tp, fp, fn int
	for c := range classes {
		for i := range references {
			switch {
			case predictions[i] == c && references[i] == c:
				tp++
			case predictions[i] == c && references[i] != c:
				fp++
			case predictions[i] != c && references[i] == c:
				fn++
			}
		}
	}
	denom := float64(2*tp + fp + fn)
	if denom == 0 {
		return 0, nil
	}
	return float64(2*tp) / denom, nil
}

// tokenize lowercases and splits on non-alphanumeric runs, matching the
// normalization the reference scorers apply before n-gram matching.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// bleuScorer computes corpus BLEU with up-to-4-gram modified precisions and
// a brevity penalty; the reported value is the precision-based composite.
type bleuScorer struct{}

func (bleuScorer) Name() string { return "bleu" }

const bleuMaxOrder = 4

func (bleuScorer) Score(references, predictions []string) (float64, error) {
	if len(references) != len(predictions) {
		return 0, fmt.Errorf("length mismatch: %d references, %d predictions", len(references), len(predictions))
	}
	matches := make([]int, bleuMaxOrder)
	possible := make([]int, bleuMaxOrder)
	var refLen, predLen int
	for i := range references {
		ref := tokenize(references[i])
		pred := tokenize(predictions[i])
		refLen += len(ref)
		predLen += len(pred)
		for n := 1; n <= bleuMaxOrder; n++ {
			refGrams := countNgrams(ref, n)
			predGrams := countNgrams(pred, n)
			for g, c := range predGrams {
				possible[n-1] += c
				if rc, ok := refGrams[g]; ok {
					if c < rc {
						matches[n-1] += c
					} else {
						matches[n-1] += rc
					}
				}
			}
		}
	}
	logSum := 0.0
	for n := 0; n < bleuMaxOrder; n++ {
		if possible[n] == 0 || matches[n] == 0 {
			return 0, nil
		}
		logSum += math.Log(float64(matches[n]) / float64(possible[n]))
	}
	geoMean := math.Exp(logSum / bleuMaxOrder)
	bp := 1.0
	if predLen < refLen && predLen > 0 {
		bp = math.Exp(1 - float64(refLen)/float64(predLen))
	}
	return geoMean * bp, nil
}

func countNgrams(tokens []string, n int) map[string]int {
	out := map[string]int{}
	for i := 0; i+n <= len(tokens); i++ {
		out[strings.Join(tokens[i:i+n], " ")] += 1
	}
	return out
}

// rougeScorer computes the longest-common-subsequence F-measure (ROUGE-L),
// aggregated over the corpus with a seeded bootstrap so the reported mid
// estimate is deterministic.
type rougeScorer struct {
	rng *rand.Rand
}

func newROUGEScorer(seed int64) *rougeScorer {
	return &rougeScorer{rng: rand.New(rand.NewSource(seed))}
}

func (*rougeScorer) Name() string { return "rouge" }

const rougeBootstrapSamples = 200

func (r *rougeScorer) Score(references, predictions []string) (float64, error) {
	if len(references) != len(predictions) {
		return 0, fmt.Errorf("length mismatch: %d references, %d predictions", len(references), len(predictions))
	}
	if len(references) == 0 {
		return 0, nil
	}
	scores := make([]float64, len(references))
	for i := range references {
		scores[i] = rougeLF1(tokenize(references[i]), tokenize(predictions[i]))
	}
	// Mid estimate: median of resampled means, as the reference aggregator
	// reports it.
	n := len(scores)
	means := make([]float64, rougeBootstrapSamples)
	for s := 0; s < rougeBootstrapSamples; s++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += scores[r.rng.Intn(n)]
		}
		means[s] = sum / float64(n)
	}
	sort.Float64s(means)
	return means[rougeBootstrapSamples/2], nil
}

// rougeLF1 is the LCS-based F-measure for one reference/prediction pair.
func rougeLF1(ref, pred []string) float64 {
	if len(ref) == 0 || len(pred) == 0 {
		return 0
	}
	lcs := lcsLength(ref, pred)
	if lcs == 0 {
		return 0
	}
	precision := float64(lcs) / float64(len(pred))
	recall := float64(lcs) / float64(len(ref))
	return 2 * precision * recall / (precision + recall)
}

func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return prev[len(b)]
}
