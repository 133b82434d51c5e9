package emotion

import (
	"errors"
	"math"
	"testing"
)

func TestRank(t *testing.T) {
	t.Run("sorts descending and normalizes", func(t *testing.T) {
		raw := []float32{0.1, 0.05, 0.05, 0.5, 0.2, 0.05, 0.05}

		p, err := Rank(raw)
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}

		if !p.Valid() {
			t.Error("expected a valid prediction")
		}
		if p.Top().Label != Happy {
			t.Errorf("top label = %s, want %s", p.Top().Label, Happy)
		}
		if math.Abs(p.Top().Confidence-0.5) > SumTolerance {
			t.Errorf("top confidence = %f, want 0.5", p.Top().Confidence)
		}
	})

	t.Run("normalizes scores that do not sum to one", func(t *testing.T) {
		raw := []float32{2, 2, 2, 2, 2, 2, 2}

		p, err := Rank(raw)
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}

		var sum float64
		for _, s := range p {
			if math.Abs(s.Confidence-1.0/7.0) > SumTolerance {
				t.Errorf("confidence = %f, want %f", s.Confidence, 1.0/7.0)
			}
			sum += s.Confidence
		}
		if math.Abs(sum-1.0) > SumTolerance {
			t.Errorf("sum = %f, want 1.0", sum)
		}
	})

	t.Run("breaks ties by canonical order", func(t *testing.T) {
		raw := []float32{1, 1, 1, 1, 1, 1, 1}

		p, err := Rank(raw)
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}

		for i, s := range p {
			if s.Label != Labels[i] {
				t.Errorf("position %d = %s, want %s", i, s.Label, Labels[i])
			}
		}
	})

	t.Run("covers each label exactly once", func(t *testing.T) {
		raw := []float32{0.3, 0.1, 0.1, 0.2, 0.1, 0.1, 0.1}

		p, _ := Rank(raw)

		seen := make(map[Label]int)
		for _, s := range p {
			seen[s.Label]++
		}
		for _, l := range Labels {
			if seen[l] != 1 {
				t.Errorf("label %s appears %d times, want 1", l, seen[l])
			}
		}
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		if _, err := Rank([]float32{0.5, 0.5}); err == nil {
			t.Error("expected error for short score vector")
		}
	})

	t.Run("rejects negative scores", func(t *testing.T) {
		raw := []float32{0.5, -0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
		if _, err := Rank(raw); err == nil {
			t.Error("expected error for negative score")
		}
	})

	t.Run("rejects all-zero vector", func(t *testing.T) {
		if _, err := Rank(make([]float32, NumLabels)); err == nil {
			t.Error("expected error for all-zero scores")
		}
	})

	t.Run("rejects NaN", func(t *testing.T) {
		raw := []float32{float32(math.NaN()), 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
		if _, err := Rank(raw); err == nil {
			t.Error("expected error for NaN score")
		}
	})
}

func TestPrediction_Valid(t *testing.T) {
	t.Run("rejects duplicate labels", func(t *testing.T) {
		p := Prediction{
			{Happy, 0.4}, {Happy, 0.3}, {Fear, 0.1}, {Angry, 0.1},
			{Neutral, 0.05}, {Sad, 0.03}, {Surprise, 0.02},
		}
		if p.Valid() {
			t.Error("duplicate labels should not validate")
		}
	})

	t.Run("rejects unsorted distribution", func(t *testing.T) {
		p := Prediction{
			{Happy, 0.1}, {Angry, 0.4}, {Fear, 0.1}, {Disgust, 0.1},
			{Neutral, 0.1}, {Sad, 0.1}, {Surprise, 0.1},
		}
		if p.Valid() {
			t.Error("unsorted distribution should not validate")
		}
	})

	t.Run("rejects bad sum", func(t *testing.T) {
		p := Prediction{
			{Happy, 0.4}, {Angry, 0.1}, {Fear, 0.1}, {Disgust, 0.1},
			{Neutral, 0.1}, {Sad, 0.1}, {Surprise, 0.1},
		}
		if p.Valid() {
			t.Error("sum of 1.1 should not validate")
		}
	})
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("inference error unwraps its cause", func(t *testing.T) {
		cause := errors.New("zero-area tensor")
		err := &InferenceError{Backend: "onnx", Err: cause}

		if !errors.Is(err, cause) {
			t.Error("expected InferenceError to unwrap to its cause")
		}

		var ie *InferenceError
		if !errors.As(error(err), &ie) {
			t.Error("expected errors.As to match InferenceError")
		}
		if ie.Backend != "onnx" {
			t.Errorf("backend = %s, want onnx", ie.Backend)
		}
	})
}
