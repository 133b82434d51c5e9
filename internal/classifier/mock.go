package classifier

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/emotion"
	"github.com/frankletsbe/recognise-emotion/internal/locator"
)

// TensorDims records the shape of a tensor a mock backend received.
type TensorDims struct {
	Rows     int
	Cols     int
	Channels int
	Type     gocv.MatType
}

// MockClassifier is a test implementation of the Classifier interface.
// It records the dimensions of every tensor it receives so tests can
// verify the normalizer honored the declared contract.
type MockClassifier struct {
	mu         sync.Mutex
	contract   InputContract
	prediction emotion.Prediction
	err        error
	received   []TensorDims
	closed     bool
}

// NewMockClassifier creates a mock declaring the given contract and
// returning a uniform distribution until configured otherwise.
func NewMockClassifier(contract InputContract) *MockClassifier {
	uniform := make([]float32, emotion.NumLabels)
	for i := range uniform {
		uniform[i] = 1
	}
	p, _ := emotion.Rank(uniform)

	return &MockClassifier{
		contract:   contract,
		prediction: p,
	}
}

// SetPrediction sets the prediction returned by Classify.
func (m *MockClassifier) SetPrediction(p emotion.Prediction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prediction = p
}

// SetError sets the error returned by Classify.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Received returns the recorded tensor dimensions, in call order.
func (m *MockClassifier) Received() []TensorDims {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TensorDims, len(m.received))
	copy(out, m.received)
	return out
}

// Closed reports whether Close has been called.
func (m *MockClassifier) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Classify records the tensor shape and returns the configured result.
func (m *MockClassifier) Classify(tensor *gocv.Mat) (emotion.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tensor != nil && !tensor.Empty() {
		m.received = append(m.received, TensorDims{
			Rows:     tensor.Rows(),
			Cols:     tensor.Cols(),
			Channels: tensor.Channels(),
			Type:     tensor.Type(),
		})
	}

	if m.err != nil {
		return nil, m.err
	}
	return m.prediction, nil
}

// Contract returns the declared input contract.
func (m *MockClassifier) Contract() InputContract {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contract
}

// Close marks the mock closed.
func (m *MockClassifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// MockFaceAnalyzer is a mock backend that, like the remote face-analysis
// variant, performs its own detection and reports its own box.
type MockFaceAnalyzer struct {
	*MockClassifier
	box *locator.Box
}

// NewMockFaceAnalyzer creates a self-locating mock returning the given box.
func NewMockFaceAnalyzer(contract InputContract, box *locator.Box) *MockFaceAnalyzer {
	return &MockFaceAnalyzer{
		MockClassifier: NewMockClassifier(contract),
		box:            box,
	}
}

// SetBox sets the box ClassifyImage reports.
func (m *MockFaceAnalyzer) SetBox(box *locator.Box) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.box = box
}

// ClassifyImage returns the configured prediction and box. A nil box
// yields NoFaceDetected, mirroring the remote backend.
func (m *MockFaceAnalyzer) ClassifyImage(img *gocv.Mat) (emotion.Prediction, *locator.Box, error) {
	p, err := m.Classify(img)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	box := m.box
	m.mu.Unlock()

	if box == nil {
		return nil, nil, emotion.ErrNoFaceDetected
	}
	return p, box, nil
}
