package classifier

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/locator"
)

// Normalize crops img to box and converts the region into the tensor
// shape declared by the contract: clamp, resize with area interpolation,
// convert channels, scale to the trained value range. The returned Mat
// is CV_32F and owned by the caller.
//
// The box is clamped defensively even though the locator already clamps;
// a box that collapses to zero area after clamping is rejected.
func Normalize(img *gocv.Mat, box locator.Box, c InputContract) (gocv.Mat, error) {
	if img == nil || img.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty source image")
	}

	clamped := box.Clamp(img.Cols(), img.Rows())
	if clamped.W <= 0 || clamped.H <= 0 {
		return gocv.Mat{}, fmt.Errorf("box %+v has no area within %dx%d image", box, img.Cols(), img.Rows())
	}

	region := img.Region(image.Rect(clamped.X, clamped.Y, clamped.X+clamped.W, clamped.Y+clamped.H))
	defer region.Close()

	converted := gocv.NewMat()
	defer converted.Close()

	switch c.Color {
	case ColorGray:
		if region.Channels() == 1 {
			region.CopyTo(&converted)
		} else {
			gocv.CvtColor(region, &converted, gocv.ColorBGRToGray)
		}
	case ColorRGB:
		if region.Channels() == 1 {
			gocv.CvtColor(region, &converted, gocv.ColorGrayToBGR)
		} else {
			region.CopyTo(&converted)
		}
		gocv.CvtColor(converted, &converted, gocv.ColorBGRToRGB)
	default:
		return gocv.Mat{}, fmt.Errorf("unknown color mode %q", c.Color)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(converted, &resized, image.Pt(c.TargetWidth, c.TargetHeight), 0, 0, gocv.InterpolationArea)

	tensor := gocv.NewMat()
	switch c.Scale {
	case ScaleUnit:
		resized.ConvertToWithParams(&tensor, gocv.MatTypeCV32F, 1.0/255.0, 0)
	case ScaleSymmetric:
		resized.ConvertToWithParams(&tensor, gocv.MatTypeCV32F, 1.0/127.5, -1.0)
	default:
		tensor.Close()
		return gocv.Mat{}, fmt.Errorf("unknown scale range %q", c.Scale)
	}

	return tensor, nil
}
