// Package classifier provides interchangeable emotion inference backends
// behind a single interface, plus the region normalizer that prepares a
// cropped face for whichever backend is active.
package classifier

import (
	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/emotion"
	"github.com/frankletsbe/recognise-emotion/internal/locator"
)

// ColorMode is the channel layout a backend expects.
type ColorMode string

const (
	// ColorGray is a single-channel grayscale tensor.
	ColorGray ColorMode = "gray"
	// ColorRGB is a three-channel RGB tensor.
	ColorRGB ColorMode = "rgb"
)

// ScaleRange is the numeric range a backend was trained on.
type ScaleRange string

const (
	// ScaleUnit maps pixel values to [0, 1].
	ScaleUnit ScaleRange = "unit"
	// ScaleSymmetric maps pixel values to [-1, 1].
	ScaleSymmetric ScaleRange = "symmetric"
)

// InputContract declares the tensor shape and value range a backend
// expects. The normalizer is driven entirely by this declaration and
// carries no assumption about which backend is active.
type InputContract struct {
	TargetWidth  int
	TargetHeight int
	Color        ColorMode
	Scale        ScaleRange
}

// Classifier is the single capability all backends are polymorphic over:
// a normalized face tensor in, a ranked distribution over the seven
// classes out.
type Classifier interface {
	// Classify runs one forward pass. The tensor must satisfy the
	// backend's Contract. Safe for concurrent use.
	Classify(tensor *gocv.Mat) (emotion.Prediction, error)

	// Contract returns the input the backend expects.
	Contract() InputContract

	// Close releases any resources held by the backend.
	Close() error
}

// SelfLocating is implemented by backends that run their own internal
// face detection. The pipeline hands such a backend the full decoded
// image and uses the box it returns, bypassing the locator and
// normalizer entirely.
type SelfLocating interface {
	// ClassifyImage detects and classifies in one step. A nil box with
	// a NoFaceDetected error means the backend found no face.
	ClassifyImage(img *gocv.Mat) (emotion.Prediction, *locator.Box, error)
}
