package classifier

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/emotion"
)

// TensorFlowClassifier is the deep-framework variant: a larger
// pretrained network fine-tuned for expression recognition, loaded from
// a frozen TensorFlow graph. Higher accuracy, higher latency than the
// lightweight CNN.
type TensorFlowClassifier struct {
	net gocv.Net
	mu  sync.Mutex
}

// NewTensorFlowClassifier loads the frozen graph from a .pb file.
// Returns ModelUnavailable if the file is missing or unreadable.
func NewTensorFlowClassifier(modelPath string) (*TensorFlowClassifier, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", emotion.ErrModelUnavailable, err)
	}

	net := gocv.ReadNetFromTensorflow(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to read %s", emotion.ErrModelUnavailable, modelPath)
	}

	return &TensorFlowClassifier{net: net}, nil
}

// Contract declares the 224x224 RGB [-1,1] input of the fine-tuned
// network.
func (c *TensorFlowClassifier) Contract() InputContract {
	return InputContract{
		TargetWidth:  224,
		TargetHeight: 224,
		Color:        ColorRGB,
		Scale:        ScaleSymmetric,
	}
}

// Classify runs one forward pass over the normalized tensor.
func (c *TensorFlowClassifier) Classify(tensor *gocv.Mat) (emotion.Prediction, error) {
	if tensor == nil || tensor.Empty() {
		return nil, &emotion.InferenceError{Backend: "tensorflow", Err: fmt.Errorf("empty tensor")}
	}

	contract := c.Contract()
	blob := gocv.BlobFromImage(*tensor, 1.0,
		image.Pt(contract.TargetWidth, contract.TargetHeight),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.mu.Lock()
	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	c.mu.Unlock()
	defer out.Close()

	if out.Empty() || out.Total() < emotion.NumLabels {
		return nil, &emotion.InferenceError{Backend: "tensorflow", Err: fmt.Errorf("unexpected output shape")}
	}

	raw := make([]float32, emotion.NumLabels)
	for i := range raw {
		raw[i] = out.GetFloatAt(0, i)
	}

	// The frozen graph exports logits rather than probabilities.
	p, err := emotion.Rank(softmax(raw))
	if err != nil {
		return nil, &emotion.InferenceError{Backend: "tensorflow", Err: err}
	}
	return p, nil
}

// Close releases the network.
func (c *TensorFlowClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}

// softmax converts logits into a probability distribution, shifting by
// the maximum for numerical stability.
func softmax(logits []float32) []float32 {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}

	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
