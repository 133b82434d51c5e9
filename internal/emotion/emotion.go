// Package emotion defines the seven expression classes and the ranked
// probability distribution produced by every classifier backend.
package emotion

import (
	"fmt"
	"math"
	"sort"
)

// Label is one of the seven expression classes.
type Label string

// Canonical label order. Ranking ties are broken by this order so that
// identical inputs always produce identical output.
const (
	Angry    Label = "Angry"
	Disgust  Label = "Disgust"
	Fear     Label = "Fear"
	Happy    Label = "Happy"
	Neutral  Label = "Neutral"
	Sad      Label = "Sad"
	Surprise Label = "Surprise"
)

// Labels lists all classes in canonical order. Classifier outputs are
// indexed by this order.
var Labels = [7]Label{Angry, Disgust, Fear, Happy, Neutral, Sad, Surprise}

// NumLabels is the number of expression classes.
const NumLabels = len(Labels)

// SumTolerance is the allowed floating-point drift on the confidence sum.
const SumTolerance = 1e-3

// Score pairs a label with its confidence in [0, 1].
type Score struct {
	Label      Label
	Confidence float64
}

// Prediction is a distribution over all seven classes, sorted by
// descending confidence. Confidences sum to 1.0 within SumTolerance.
type Prediction []Score

// Rank builds a Prediction from raw per-class scores in canonical order.
// The scores are normalized to sum to 1 and sorted descending, ties
// broken by canonical order. Negative scores or an all-zero vector are
// rejected, as is a vector of the wrong length.
func Rank(raw []float32) (Prediction, error) {
	if len(raw) != NumLabels {
		return nil, fmt.Errorf("expected %d class scores, got %d", NumLabels, len(raw))
	}

	var sum float64
	for i, v := range raw {
		if math.IsNaN(float64(v)) || v < 0 {
			return nil, fmt.Errorf("invalid score %f for %s", v, Labels[i])
		}
		sum += float64(v)
	}
	if sum <= 0 {
		return nil, fmt.Errorf("all class scores are zero")
	}

	p := make(Prediction, NumLabels)
	for i, v := range raw {
		p[i] = Score{Label: Labels[i], Confidence: float64(v) / sum}
	}

	// Stable sort over the canonical-order slice gives the canonical
	// tie-break for free.
	sort.SliceStable(p, func(a, b int) bool {
		return p[a].Confidence > p[b].Confidence
	})

	return p, nil
}

// Top returns the highest-confidence score.
func (p Prediction) Top() Score {
	if len(p) == 0 {
		return Score{}
	}
	return p[0]
}

// Valid reports whether the prediction holds each label exactly once,
// sorted descending, with confidences summing to 1 within SumTolerance.
func (p Prediction) Valid() bool {
	if len(p) != NumLabels {
		return false
	}

	seen := make(map[Label]bool, NumLabels)
	var sum float64
	for i, s := range p {
		if s.Confidence < 0 || s.Confidence > 1 {
			return false
		}
		if i > 0 && s.Confidence > p[i-1].Confidence {
			return false
		}
		if seen[s.Label] {
			return false
		}
		seen[s.Label] = true
		sum += s.Confidence
	}

	return math.Abs(sum-1.0) <= SumTolerance
}
