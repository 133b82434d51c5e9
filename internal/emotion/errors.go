package emotion

import (
	"errors"
	"fmt"
)

// Errors recovered at the request boundary and translated into the
// structured JSON error shape. Nothing below should ever crash a worker.
var (
	// ErrInvalidImage is returned when an upload is empty or undecodable.
	ErrInvalidImage = errors.New("invalid image")

	// ErrNoFaceDetected is returned when a valid image contains no
	// locatable face. This is a user-facing condition, not a server error.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrUnknownModel is returned when a model id is not registered.
	ErrUnknownModel = errors.New("unknown model")

	// ErrModelUnavailable is returned when a registered model cannot be
	// loaded (missing weights, unreachable service).
	ErrModelUnavailable = errors.New("model unavailable")
)

// InferenceError wraps an unexpected backend failure during a forward
// pass. The wrapped detail is logged server-side and never sent to the
// client.
type InferenceError struct {
	Backend string
	Err     error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed on %s: %v", e.Backend, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
