package pipeline

import (
	"fmt"

	"github.com/frankletsbe/recognise-emotion/internal/emotion"
	"github.com/frankletsbe/recognise-emotion/internal/locator"
)

// EmotionScore is one labelled confidence in the response payload.
type EmotionScore struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Response is the JSON body returned for a successful prediction.
// AllPredictions always carries all labels, ordered by descending
// confidence. Box is [x, y, w, h] in original image coordinates and is
// omitted when the backend did not report one.
type Response struct {
	Success        bool           `json:"success"`
	Prediction     string         `json:"prediction"`
	Confidence     float64        `json:"confidence"`
	AllPredictions []EmotionScore `json:"all_predictions"`
	Box            []int          `json:"box,omitempty"`
	Model          string         `json:"model"`
}

// Assemble builds the response payload from a ranked prediction. The
// box, when present, is clamped to the original image bounds so clients
// can overlay it directly. A malformed distribution is refused rather
// than serialized.
func Assemble(box *locator.Box, prediction emotion.Prediction, imgWidth, imgHeight int, modelID string) (*Response, error) {
	if !prediction.Valid() {
		return nil, fmt.Errorf("assemble response: malformed prediction distribution")
	}

	scores := make([]EmotionScore, len(prediction))
	for i, s := range prediction {
		scores[i] = EmotionScore{
			Emotion:    string(s.Label),
			Confidence: s.Confidence,
		}
	}

	top := prediction.Top()
	resp := &Response{
		Success:        true,
		Prediction:     string(top.Label),
		Confidence:     top.Confidence,
		AllPredictions: scores,
		Model:          modelID,
	}

	if box != nil {
		b := box.Clamp(imgWidth, imgHeight)
		resp.Box = []int{b.X, b.Y, b.W, b.H}
	}

	return resp, nil
}
