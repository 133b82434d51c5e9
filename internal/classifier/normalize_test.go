package classifier

import (
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/locator"
)

// solidFrame returns a BGR frame filled with the given intensity.
func solidFrame(t *testing.T, rows, cols int, value float64) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	m.SetTo(gocv.NewScalar(value, value, value, 0))
	return m
}

func TestNormalize(t *testing.T) {
	t.Run("grayscale contract yields single-channel target size", func(t *testing.T) {
		img := solidFrame(t, 200, 300, 128)
		defer img.Close()

		c := InputContract{TargetWidth: 48, TargetHeight: 48, Color: ColorGray, Scale: ScaleUnit}
		tensor, err := Normalize(&img, locator.Box{X: 10, Y: 10, W: 100, H: 100}, c)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		defer tensor.Close()

		if tensor.Rows() != 48 || tensor.Cols() != 48 {
			t.Errorf("tensor size = %dx%d, want 48x48", tensor.Cols(), tensor.Rows())
		}
		if tensor.Channels() != 1 {
			t.Errorf("channels = %d, want 1", tensor.Channels())
		}
	})

	t.Run("rgb contract yields three-channel target size", func(t *testing.T) {
		img := solidFrame(t, 480, 640, 90)
		defer img.Close()

		c := InputContract{TargetWidth: 224, TargetHeight: 224, Color: ColorRGB, Scale: ScaleSymmetric}
		tensor, err := Normalize(&img, locator.Box{X: 0, Y: 0, W: 640, H: 480}, c)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		defer tensor.Close()

		if tensor.Rows() != 224 || tensor.Cols() != 224 {
			t.Errorf("tensor size = %dx%d, want 224x224", tensor.Cols(), tensor.Rows())
		}
		if tensor.Channels() != 3 {
			t.Errorf("channels = %d, want 3", tensor.Channels())
		}
	})

	t.Run("unit scale maps white to one", func(t *testing.T) {
		img := solidFrame(t, 100, 100, 255)
		defer img.Close()

		c := InputContract{TargetWidth: 48, TargetHeight: 48, Color: ColorGray, Scale: ScaleUnit}
		tensor, err := Normalize(&img, locator.Box{X: 0, Y: 0, W: 100, H: 100}, c)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		defer tensor.Close()

		got := float64(tensor.GetFloatAt(0, 0))
		if math.Abs(got-1.0) > 0.01 {
			t.Errorf("white pixel = %f, want 1.0", got)
		}
	})

	t.Run("symmetric scale maps black to minus one", func(t *testing.T) {
		img := solidFrame(t, 100, 100, 0)
		defer img.Close()

		c := InputContract{TargetWidth: 48, TargetHeight: 48, Color: ColorGray, Scale: ScaleSymmetric}
		tensor, err := Normalize(&img, locator.Box{X: 0, Y: 0, W: 100, H: 100}, c)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		defer tensor.Close()

		got := float64(tensor.GetFloatAt(0, 0))
		if math.Abs(got-(-1.0)) > 0.01 {
			t.Errorf("black pixel = %f, want -1.0", got)
		}
	})

	t.Run("out-of-bounds box is clamped", func(t *testing.T) {
		img := solidFrame(t, 100, 100, 64)
		defer img.Close()

		c := InputContract{TargetWidth: 48, TargetHeight: 48, Color: ColorGray, Scale: ScaleUnit}
		tensor, err := Normalize(&img, locator.Box{X: 80, Y: 80, W: 60, H: 60}, c)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		defer tensor.Close()

		if tensor.Rows() != 48 || tensor.Cols() != 48 {
			t.Errorf("tensor size = %dx%d, want 48x48", tensor.Cols(), tensor.Rows())
		}
	})

	t.Run("zero-area box is rejected", func(t *testing.T) {
		img := solidFrame(t, 100, 100, 64)
		defer img.Close()

		c := InputContract{TargetWidth: 48, TargetHeight: 48, Color: ColorGray, Scale: ScaleUnit}
		if _, err := Normalize(&img, locator.Box{X: 150, Y: 150, W: 20, H: 20}, c); err == nil {
			t.Error("expected error for box outside the image")
		}
	})

	t.Run("empty image is rejected", func(t *testing.T) {
		empty := gocv.NewMat()
		defer empty.Close()

		c := InputContract{TargetWidth: 48, TargetHeight: 48, Color: ColorGray, Scale: ScaleUnit}
		if _, err := Normalize(&empty, locator.Box{X: 0, Y: 0, W: 10, H: 10}, c); err == nil {
			t.Error("expected error for empty image")
		}
	})

	t.Run("unknown color mode is rejected", func(t *testing.T) {
		img := solidFrame(t, 100, 100, 64)
		defer img.Close()

		c := InputContract{TargetWidth: 48, TargetHeight: 48, Color: "bgr", Scale: ScaleUnit}
		if _, err := Normalize(&img, locator.Box{X: 0, Y: 0, W: 50, H: 50}, c); err == nil {
			t.Error("expected error for unknown color mode")
		}
	})
}
