// Package pipeline runs the prediction request chain: decode, locate,
// normalize, classify, assemble.
package pipeline

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/classifier"
	"github.com/frankletsbe/recognise-emotion/internal/emotion"
	"github.com/frankletsbe/recognise-emotion/internal/locator"
	"github.com/frankletsbe/recognise-emotion/internal/registry"
)

// Pipeline wires the face locator and the model registry into one
// synchronous prediction path. A request runs to completion on the
// calling goroutine; the active backend reference is captured once at
// entry.
type Pipeline struct {
	locator  locator.Locator
	registry *registry.Registry
}

// New creates a Pipeline using the given locator and registry.
func New(loc locator.Locator, reg *registry.Registry) *Pipeline {
	return &Pipeline{
		locator:  loc,
		registry: reg,
	}
}

// Predict decodes uploaded image bytes and runs the prediction chain.
// Empty or undecodable input fails with InvalidImage.
func (p *Pipeline) Predict(data []byte) (*Response, error) {
	if len(data) == 0 {
		return nil, emotion.ErrInvalidImage
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", emotion.ErrInvalidImage, err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, emotion.ErrInvalidImage
	}

	return p.PredictFrame(&img)
}

// PredictFrame runs the prediction chain over an already-decoded frame.
// Shared by the upload endpoint and the live capture endpoints.
func (p *Pipeline) PredictFrame(img *gocv.Mat) (*Response, error) {
	if img == nil || img.Empty() {
		return nil, emotion.ErrInvalidImage
	}

	id, active, err := p.registry.ActiveClassifier()
	if err != nil {
		return nil, err
	}

	// A backend with its own internal detection gets the full frame and
	// reports its own box.
	if sl, ok := active.(classifier.SelfLocating); ok {
		prediction, box, err := sl.ClassifyImage(img)
		if err != nil {
			return nil, err
		}
		return Assemble(box, prediction, img.Cols(), img.Rows(), id)
	}

	box, err := p.locator.Locate(img)
	if err != nil {
		return nil, fmt.Errorf("locate face: %w", err)
	}
	if box == nil {
		return nil, emotion.ErrNoFaceDetected
	}

	tensor, err := classifier.Normalize(img, *box, active.Contract())
	if err != nil {
		return nil, &emotion.InferenceError{Backend: id, Err: err}
	}
	defer tensor.Close()

	prediction, err := active.Classify(&tensor)
	if err != nil {
		return nil, err
	}

	return Assemble(box, prediction, img.Cols(), img.Rows(), id)
}
