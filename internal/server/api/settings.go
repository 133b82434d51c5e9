package api

import (
	"encoding/json"
	"net/http"

	"github.com/frankletsbe/recognise-emotion/internal/registry"
)

// updateSettingsRequest carries the mutable settings. Absent fields
// leave the current value in place.
type updateSettingsRequest struct {
	ModelID     *string `json:"model_type"`
	CameraIndex *int    `json:"camera_index"`
}

type settingsResponse struct {
	Success     bool   `json:"success"`
	ModelID     string `json:"model_type"`
	CameraIndex int    `json:"camera_index"`
}

// SettingsHandler handles GET and POST requests to /api/settings.
type SettingsHandler struct {
	registry *registry.Registry
	apply    func(registry.Settings)
}

// NewSettingsHandler creates a SettingsHandler. The apply callback, if
// set, runs after a successful update with the effective settings; the
// application uses it to swap the capture device.
func NewSettingsHandler(r *registry.Registry, apply func(registry.Settings)) *SettingsHandler {
	return &SettingsHandler{registry: r, apply: apply}
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get returns the current settings snapshot.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Settings()
	writeJSON(w, http.StatusOK, settingsResponse{
		Success:     true,
		ModelID:     s.ModelID,
		CameraIndex: s.CameraIndex,
	})
}

// update applies a settings change. A rejected model switch leaves the
// previous settings fully in place.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ModelID != nil {
		if err := h.registry.SetActive(*req.ModelID); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if req.CameraIndex != nil {
		if *req.CameraIndex < 0 {
			writeError(w, http.StatusBadRequest, "Camera index must not be negative")
			return
		}
		h.registry.SetCameraIndex(*req.CameraIndex)
	}

	effective := h.registry.Settings()
	if h.apply != nil {
		h.apply(effective)
	}

	// Echo the effective settings so clients see what actually applied.
	writeJSON(w, http.StatusOK, settingsResponse{
		Success:     true,
		ModelID:     effective.ModelID,
		CameraIndex: effective.CameraIndex,
	})
}
