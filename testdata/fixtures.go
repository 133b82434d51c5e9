// Package testdata builds synthetic test images. Frames are drawn
// programmatically so the repository carries no binary fixtures.
package testdata

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	faceTone = color.RGBA{R: 200, G: 180, B: 170, A: 0}
	darkTone = color.RGBA{R: 40, G: 40, B: 40, A: 0}
)

// SyntheticFace draws a face-like pattern: a light rectangle with two
// dark eye blocks and a mouth bar. It is enough for a Haar cascade to
// sometimes fire and for pipeline tests with an injected locator.
// The caller owns the returned Mat.
func SyntheticFace(width, height int) *gocv.Mat {
	img := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	img.SetTo(gocv.NewScalar(60, 60, 60, 0))

	// Face region.
	fx, fy := width/4, height/4
	fw, fh := width/2, height/2
	gocv.Rectangle(&img, image.Rect(fx, fy, fx+fw, fy+fh), faceTone, -1)

	// Eyes.
	eyeW, eyeH := fw/5, fh/8
	leftEye := image.Rect(fx+fw/5, fy+fh/4, fx+fw/5+eyeW, fy+fh/4+eyeH)
	rightEye := image.Rect(fx+3*fw/5, fy+fh/4, fx+3*fw/5+eyeW, fy+fh/4+eyeH)
	gocv.Rectangle(&img, leftEye, darkTone, -1)
	gocv.Rectangle(&img, rightEye, darkTone, -1)

	// Mouth.
	mouth := image.Rect(fx+fw/4, fy+2*fh/3, fx+3*fw/4, fy+2*fh/3+fh/10)
	gocv.Rectangle(&img, mouth, darkTone, -1)

	return &img
}

// SolidFrame returns a uniformly colored frame with no structure.
// The caller owns the returned Mat.
func SolidFrame(width, height int, value float64) *gocv.Mat {
	img := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	img.SetTo(gocv.NewScalar(value, value, value, 0))
	return &img
}

// EncodePNG returns the PNG bytes of a frame.
func EncodePNG(img *gocv.Mat) ([]byte, error) {
	return encode(".png", img)
}

// EncodeJPEG returns the JPEG bytes of a frame.
func EncodeJPEG(img *gocv.Mat) ([]byte, error) {
	return encode(".jpg", img)
}

func encode(ext string, img *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.FileExt(ext), *img)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ext, err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
