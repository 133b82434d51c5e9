package classifier

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/emotion"
	"github.com/frankletsbe/recognise-emotion/internal/locator"
)

func TestMockClassifier(t *testing.T) {
	contract := InputContract{TargetWidth: 48, TargetHeight: 48, Color: ColorGray, Scale: ScaleUnit}

	t.Run("returns uniform distribution by default", func(t *testing.T) {
		mock := NewMockClassifier(contract)

		tensor := gocv.NewMatWithSize(48, 48, gocv.MatTypeCV32F)
		defer tensor.Close()

		p, err := mock.Classify(&tensor)
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if !p.Valid() {
			t.Error("expected a valid prediction")
		}
	})

	t.Run("records received tensor dimensions", func(t *testing.T) {
		mock := NewMockClassifier(contract)

		tensor := gocv.NewMatWithSize(48, 48, gocv.MatTypeCV32F)
		defer tensor.Close()
		mock.Classify(&tensor)

		received := mock.Received()
		if len(received) != 1 {
			t.Fatalf("received %d tensors, want 1", len(received))
		}
		if received[0].Rows != 48 || received[0].Cols != 48 || received[0].Channels != 1 {
			t.Errorf("recorded dims = %+v, want 48x48x1", received[0])
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockClassifier(contract)
		wantErr := errors.New("scripted failure")
		mock.SetError(wantErr)

		tensor := gocv.NewMatWithSize(48, 48, gocv.MatTypeCV32F)
		defer tensor.Close()

		if _, err := mock.Classify(&tensor); err != wantErr {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	})

	t.Run("implements Classifier interface", func(t *testing.T) {
		var _ Classifier = (*MockClassifier)(nil)
	})
}

func TestMockFaceAnalyzer(t *testing.T) {
	contract := InputContract{TargetWidth: 224, TargetHeight: 224, Color: ColorRGB, Scale: ScaleUnit}

	t.Run("reports its own box", func(t *testing.T) {
		box := &locator.Box{X: 5, Y: 6, W: 70, H: 80}
		mock := NewMockFaceAnalyzer(contract, box)

		frame := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
		defer frame.Close()

		p, got, err := mock.ClassifyImage(&frame)
		if err != nil {
			t.Fatalf("ClassifyImage() error = %v", err)
		}
		if !p.Valid() {
			t.Error("expected a valid prediction")
		}
		if got != box {
			t.Errorf("box = %+v, want %+v", got, box)
		}
	})

	t.Run("nil box yields NoFaceDetected", func(t *testing.T) {
		mock := NewMockFaceAnalyzer(contract, nil)

		frame := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
		defer frame.Close()

		_, _, err := mock.ClassifyImage(&frame)
		if !errors.Is(err, emotion.ErrNoFaceDetected) {
			t.Errorf("error = %v, want NoFaceDetected", err)
		}
	})

	t.Run("implements both capabilities", func(t *testing.T) {
		var _ Classifier = (*MockFaceAnalyzer)(nil)
		var _ SelfLocating = (*MockFaceAnalyzer)(nil)
	})
}

func TestBackendContracts(t *testing.T) {
	t.Run("lightweight CNN expects 48x48 grayscale unit range", func(t *testing.T) {
		c := (&ONNXClassifier{}).Contract()
		if c.TargetWidth != 48 || c.TargetHeight != 48 || c.Color != ColorGray || c.Scale != ScaleUnit {
			t.Errorf("unexpected contract %+v", c)
		}
	})

	t.Run("deep network expects 224x224 rgb symmetric range", func(t *testing.T) {
		c := (&TensorFlowClassifier{}).Contract()
		if c.TargetWidth != 224 || c.TargetHeight != 224 || c.Color != ColorRGB || c.Scale != ScaleSymmetric {
			t.Errorf("unexpected contract %+v", c)
		}
	})
}

func TestNewONNXClassifier_MissingWeights(t *testing.T) {
	_, err := NewONNXClassifier("does-not-exist.onnx")
	if !errors.Is(err, emotion.ErrModelUnavailable) {
		t.Errorf("error = %v, want ModelUnavailable", err)
	}
}

func TestNewTensorFlowClassifier_MissingWeights(t *testing.T) {
	_, err := NewTensorFlowClassifier("does-not-exist.pb")
	if !errors.Is(err, emotion.ErrModelUnavailable) {
		t.Errorf("error = %v, want ModelUnavailable", err)
	}
}

func TestSoftmax(t *testing.T) {
	out := softmax([]float32{1, 1, 1, 1, 1, 1, 1})

	var sum float64
	for _, v := range out {
		sum += float64(v)
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("softmax sum = %f, want 1.0", sum)
	}
	for i, v := range out {
		if v < 0.142 || v > 0.144 {
			t.Errorf("softmax[%d] = %f, want ~1/7", i, v)
		}
	}
}
