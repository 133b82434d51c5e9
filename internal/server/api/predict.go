package api

import (
	"io"
	"net/http"

	"github.com/frankletsbe/recognise-emotion/internal/pipeline"
)

// maxUploadBytes caps the in-memory part of a multipart upload.
const maxUploadBytes = 10 << 20

// Predictor runs the prediction chain over uploaded image bytes.
type Predictor interface {
	Predict(data []byte) (*pipeline.Response, error)
}

// PredictHandler handles POST requests to /predict.
type PredictHandler struct {
	predictor Predictor
}

// NewPredictHandler creates a PredictHandler backed by the given predictor.
func NewPredictHandler(p Predictor) *PredictHandler {
	return &PredictHandler{predictor: p}
}

// ServeHTTP accepts a multipart upload under the "file" field and
// returns the prediction payload.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Empty file")
		return
	}

	resp, err := h.predictor.Predict(data)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
