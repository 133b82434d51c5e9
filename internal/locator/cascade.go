package locator

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
)

// CascadeLocator implements Locator with an OpenCV Haar cascade.
type CascadeLocator struct {
	config     Config
	classifier gocv.CascadeClassifier
	mu         sync.Mutex
}

// NewCascadeLocator loads the frontal-face cascade from the given XML
// file and returns a locator configured with config.
func NewCascadeLocator(cascadePath string, config Config) (*CascadeLocator, error) {
	if _, err := os.Stat(cascadePath); err != nil {
		return nil, fmt.Errorf("cascade file: %w", err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("load cascade %s failed", cascadePath)
	}

	return &CascadeLocator{
		config:     config,
		classifier: classifier,
	}, nil
}

// Locate runs the cascade over a grayscale copy of img and returns the
// largest detected face. The classical detector exposes no per-region
// confidence, so area is the selection criterion. Returns nil when no
// face is found.
func (l *CascadeLocator) Locate(img *gocv.Mat) (*Box, error) {
	if img == nil || img.Empty() {
		return nil, fmt.Errorf("empty input image")
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(*img, &gray, gocv.ColorBGRToGray)
	}

	// The underlying OpenCV classifier keeps per-call scratch state.
	l.mu.Lock()
	rects := l.classifier.DetectMultiScaleWithParams(
		gray,
		l.config.ScaleFactor,
		l.config.MinNeighbors,
		0,
		image.Pt(l.config.MinSize, l.config.MinSize),
		image.Pt(0, 0),
	)
	l.mu.Unlock()

	if len(rects) == 0 {
		return nil, nil
	}

	best := rects[0]
	for _, r := range rects[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}

	box := Box{X: best.Min.X, Y: best.Min.Y, W: best.Dx(), H: best.Dy()}
	box = box.Clamp(img.Cols(), img.Rows())
	if box.W <= 0 || box.H <= 0 {
		return nil, nil
	}

	return &box, nil
}

// Close releases the cascade classifier.
func (l *CascadeLocator) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.classifier.Close()
}

// FindCascade searches common install locations for the frontal-face
// Haar cascade XML and returns the first match, or empty string.
func FindCascade() string {
	candidates := []string{
		"models/haarcascade_frontalface_default.xml",
		"haarcascade_frontalface_default.xml",
		"/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
		"/usr/local/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
	}

	if dir := os.Getenv("CASCADE_DIR"); dir != "" {
		candidates = append([]string{filepath.Join(dir, "haarcascade_frontalface_default.xml")}, candidates...)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
