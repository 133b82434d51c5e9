// Package locator finds the best candidate face region in an image.
package locator

import "gocv.io/x/gocv"

// Box is a face bounding box in pixel coordinates of the original,
// unmirrored input image. Width and Height are always positive. Any
// mirroring for display is a presentation concern and never applied here.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Area returns the box area in pixels.
func (b Box) Area() int {
	return b.W * b.H
}

// Clamp restricts the box to an image of the given dimensions. A box
// fully outside the image collapses to zero width or height.
func (b Box) Clamp(width, height int) Box {
	if b.X < 0 {
		b.W += b.X
		b.X = 0
	}
	if b.Y < 0 {
		b.H += b.Y
		b.Y = 0
	}
	if b.X+b.W > width {
		b.W = width - b.X
	}
	if b.Y+b.H > height {
		b.H = height - b.Y
	}
	if b.W < 0 {
		b.W = 0
	}
	if b.H < 0 {
		b.H = 0
	}
	return b
}

// Locator defines the interface for face detection implementations.
type Locator interface {
	// Locate analyzes an image and returns the best candidate face box.
	// A nil box with a nil error means no face was found; that is a
	// valid outcome, not an error.
	Locate(img *gocv.Mat) (*Box, error)

	// Close releases any resources held by the locator.
	Close() error
}

// Config holds the classical detector parameters.
type Config struct {
	// ScaleFactor is the image pyramid step between detection scales.
	ScaleFactor float64

	// MinNeighbors is the minimum neighbor count a candidate needs to
	// be retained.
	MinNeighbors int

	// MinSize is the smallest face edge, in pixels, worth reporting.
	MinSize int
}

// DefaultConfig returns the detector parameters the service was tuned on.
func DefaultConfig() Config {
	return Config{
		ScaleFactor:  1.1,
		MinNeighbors: 4,
		MinSize:      30,
	}
}
