package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/emotion"
	"github.com/frankletsbe/recognise-emotion/internal/locator"
)

// RemoteClassifier delegates the entire detect-and-classify pipeline to
// an external face-analysis service speaking JSON over HTTP. It performs
// its own internal face detection, so it also implements SelfLocating
// and the pipeline skips the locator and normalizer when it is active.
type RemoteClassifier struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// remoteRequest is the analyze call payload.
type remoteRequest struct {
	Image string `json:"image"` // base64 JPEG
}

// remoteResponse is the analyze call result.
type remoteResponse struct {
	Emotions []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"emotions"`
	Box   []int  `json:"box"`
	Error string `json:"error"`
}

// NewRemoteClassifier creates a client for the face-analysis service at
// baseURL and verifies the service is reachable. Returns
// ModelUnavailable if the health check fails.
func NewRemoteClassifier(baseURL string, timeout time.Duration) (*RemoteClassifier, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: no face-analysis service configured", emotion.ErrModelUnavailable)
	}

	c := &RemoteClassifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", emotion.ErrModelUnavailable, err)
	}

	return c, nil
}

// ping checks service connectivity.
func (c *RemoteClassifier) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: %s", resp.Status)
	}
	return nil
}

// Contract declares a nominal input for completeness; the pipeline uses
// ClassifyImage for this backend, which takes the raw image instead.
func (c *RemoteClassifier) Contract() InputContract {
	return InputContract{
		TargetWidth:  224,
		TargetHeight: 224,
		Color:        ColorRGB,
		Scale:        ScaleUnit,
	}
}

// Classify sends an already-cropped tensor to the service. The service
// still runs its own detection; prefer ClassifyImage.
func (c *RemoteClassifier) Classify(tensor *gocv.Mat) (emotion.Prediction, error) {
	p, _, err := c.ClassifyImage(tensor)
	return p, err
}

// ClassifyImage posts the JPEG-encoded image to the analyze endpoint and
// returns the ranked distribution plus the box the service detected.
func (c *RemoteClassifier) ClassifyImage(img *gocv.Mat) (emotion.Prediction, *locator.Box, error) {
	if img == nil || img.Empty() {
		return nil, nil, &emotion.InferenceError{Backend: "deepface", Err: fmt.Errorf("empty image")}
	}

	buf, err := gocv.IMEncode(".jpg", *img)
	if err != nil {
		return nil, nil, &emotion.InferenceError{Backend: "deepface", Err: fmt.Errorf("encode image: %w", err)}
	}
	payload := remoteRequest{Image: base64.StdEncoding.EncodeToString(buf.GetBytes())}
	buf.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, &emotion.InferenceError{Backend: "deepface", Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, nil, &emotion.InferenceError{Backend: "deepface", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, &emotion.InferenceError{Backend: "deepface", Err: err}
	}
	defer resp.Body.Close()

	var out remoteResponse
	if resp.StatusCode == http.StatusBadRequest {
		// The service reports "no face" as a 400 with an error field.
		if err := json.NewDecoder(resp.Body).Decode(&out); err == nil &&
			strings.Contains(strings.ToLower(out.Error), "no face") {
			return nil, nil, emotion.ErrNoFaceDetected
		}
		return nil, nil, &emotion.InferenceError{Backend: "deepface", Err: fmt.Errorf("analyze: %s", out.Error)}
	}
	if resp.StatusCode != http.StatusOK {
		const maxErr = 4096
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErr))
		return nil, nil, &emotion.InferenceError{
			Backend: "deepface",
			Err:     fmt.Errorf("analyze %s: %s", resp.Status, strings.TrimSpace(string(detail))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, &emotion.InferenceError{Backend: "deepface", Err: fmt.Errorf("decode response: %w", err)}
	}

	prediction, err := rankRemote(out)
	if err != nil {
		return nil, nil, &emotion.InferenceError{Backend: "deepface", Err: err}
	}

	var box *locator.Box
	if len(out.Box) == 4 {
		b := locator.Box{X: out.Box[0], Y: out.Box[1], W: out.Box[2], H: out.Box[3]}
		if b.W > 0 && b.H > 0 {
			box = &b
		}
	}

	return prediction, box, nil
}

// rankRemote maps the service's label/score pairs onto the canonical
// label vector before ranking. Labels the service does not report score
// zero; labels outside the canonical set are rejected.
func rankRemote(out remoteResponse) (emotion.Prediction, error) {
	index := make(map[emotion.Label]int, emotion.NumLabels)
	for i, l := range emotion.Labels {
		index[l] = i
	}

	raw := make([]float32, emotion.NumLabels)
	for _, e := range out.Emotions {
		i, ok := index[emotion.Label(e.Label)]
		if !ok {
			return nil, fmt.Errorf("unknown label %q from service", e.Label)
		}
		raw[i] = float32(e.Score)
	}

	return emotion.Rank(raw)
}

// Close is a no-op; the HTTP client holds no resources worth releasing.
func (c *RemoteClassifier) Close() error {
	return nil
}
