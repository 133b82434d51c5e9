// Package api provides the HTTP API handlers for the emotion
// recognition service.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/frankletsbe/recognise-emotion/internal/emotion"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps a pipeline error onto an HTTP status. Client
// mistakes come back as 400 with a specific message; an unavailable
// backend is 503; anything else is a 500 with a generic body, the
// details staying in the server log under a request id.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, emotion.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "Could not decode image")
	case errors.Is(err, emotion.ErrNoFaceDetected):
		writeError(w, http.StatusBadRequest, "No face detected in the image")
	case errors.Is(err, emotion.ErrUnknownModel):
		writeError(w, http.StatusBadRequest, "Unknown model")
	case errors.Is(err, emotion.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Model is not available")
	default:
		id := uuid.New().String()
		log.Printf("request %s: inference failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Inference failed (request "+id+")")
	}
}
