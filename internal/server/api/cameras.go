package api

import (
	"net/http"

	"github.com/frankletsbe/recognise-emotion/internal/capture"
)

type listCamerasResponse struct {
	Cameras     []capture.Device `json:"cameras"`
	Recommended int              `json:"recommended"`
	Current     int              `json:"current"`
}

// CamerasHandler handles GET requests to /api/cameras.
type CamerasHandler struct {
	enumerate func() []capture.Device
	current   func() int
}

// NewCamerasHandler creates a CamerasHandler. The current function
// reports the camera index in use; enumeration probes the devices fresh
// on every request.
func NewCamerasHandler(current func() int) *CamerasHandler {
	return &CamerasHandler{
		enumerate: func() []capture.Device {
			return capture.Enumerate(capture.MaxDevices, capture.ProbeTimeout, nil)
		},
		current: current,
	}
}

// SetEnumerator replaces the device prober, for tests.
func (h *CamerasHandler) SetEnumerator(fn func() []capture.Device) {
	h.enumerate = fn
}

// ServeHTTP probes the capture devices and reports which ones work.
func (h *CamerasHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	devices := h.enumerate()

	writeJSON(w, http.StatusOK, listCamerasResponse{
		Cameras:     devices,
		Recommended: capture.Recommended(devices),
		Current:     h.current(),
	})
}
