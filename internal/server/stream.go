package server

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/capture"
	"github.com/frankletsbe/recognise-emotion/internal/pipeline"
)

var overlayColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// StreamHandler serves MJPEG frames from the camera, annotated with the
// detected face box and top emotion when a prediction succeeds.
type StreamHandler struct {
	camera    func() capture.Camera
	predictor FramePredictor
}

// NewStreamHandler creates a StreamHandler. The predictor is optional;
// without one the raw frames are streamed.
func NewStreamHandler(camera func() capture.Camera, predictor FramePredictor) *StreamHandler {
	return &StreamHandler{camera: camera, predictor: predictor}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		cam := h.camera()
		if cam == nil {
			return
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if h.predictor != nil {
			// Prediction failures (no face, backend down) stream the raw
			// frame rather than interrupting the feed.
			if resp, err := h.predictor.PredictFrame(frame); err == nil {
				annotate(frame, resp)
			}
		}

		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(200 * time.Millisecond) // ~5 FPS
	}
}

// annotate draws the face box and top label onto the frame in place.
func annotate(frame *gocv.Mat, resp *pipeline.Response) {
	if len(resp.Box) != 4 {
		return
	}

	x, y, w, ht := resp.Box[0], resp.Box[1], resp.Box[2], resp.Box[3]
	gocv.Rectangle(frame, image.Rect(x, y, x+w, y+ht), overlayColor, 2)

	label := fmt.Sprintf("%s (%.0f%%)", resp.Prediction, resp.Confidence*100)
	origin := image.Pt(x, y-10)
	if origin.Y < 10 {
		origin.Y = y + ht + 20
	}
	gocv.PutText(frame, label, origin, gocv.FontHersheySimplex, 0.9, overlayColor, 2)
}
