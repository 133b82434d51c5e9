package classifier

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/emotion"
)

// ONNXClassifier is the lightweight CNN variant: a small convolutional
// network trained for 7-class expression recognition on cropped
// grayscale faces, run through the OpenCV DNN module.
type ONNXClassifier struct {
	net gocv.Net
	mu  sync.Mutex
}

// NewONNXClassifier loads the network weights from an ONNX file.
// Returns ModelUnavailable if the file is missing or unreadable.
func NewONNXClassifier(modelPath string) (*ONNXClassifier, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", emotion.ErrModelUnavailable, err)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to read %s", emotion.ErrModelUnavailable, modelPath)
	}

	return &ONNXClassifier{net: net}, nil
}

// Contract declares the 48x48 grayscale [0,1] input the network was
// trained on.
func (c *ONNXClassifier) Contract() InputContract {
	return InputContract{
		TargetWidth:  48,
		TargetHeight: 48,
		Color:        ColorGray,
		Scale:        ScaleUnit,
	}
}

// Classify runs one forward pass over the normalized tensor.
func (c *ONNXClassifier) Classify(tensor *gocv.Mat) (emotion.Prediction, error) {
	if tensor == nil || tensor.Empty() {
		return nil, &emotion.InferenceError{Backend: "onnx", Err: fmt.Errorf("empty tensor")}
	}

	contract := c.Contract()
	blob := gocv.BlobFromImage(*tensor, 1.0,
		image.Pt(contract.TargetWidth, contract.TargetHeight),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	// The DNN net keeps forward-pass scratch state, so calls are
	// serialized; callers never share tensors across calls.
	c.mu.Lock()
	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	c.mu.Unlock()
	defer out.Close()

	if out.Empty() || out.Total() < emotion.NumLabels {
		return nil, &emotion.InferenceError{Backend: "onnx", Err: fmt.Errorf("unexpected output shape")}
	}

	probs := make([]float32, emotion.NumLabels)
	for i := range probs {
		probs[i] = out.GetFloatAt(0, i)
	}

	p, err := emotion.Rank(probs)
	if err != nil {
		return nil, &emotion.InferenceError{Backend: "onnx", Err: err}
	}
	return p, nil
}

// Close releases the network.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}
