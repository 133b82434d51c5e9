package api

import (
	"net/http"

	"github.com/frankletsbe/recognise-emotion/internal/registry"
)

type listModelsResponse struct {
	Models  []registry.ModelDescriptor `json:"models"`
	Current string                     `json:"current"`
}

// ModelsHandler handles GET requests to /api/models.
type ModelsHandler struct {
	registry *registry.Registry
}

// NewModelsHandler creates a ModelsHandler backed by the given registry.
func NewModelsHandler(r *registry.Registry) *ModelsHandler {
	return &ModelsHandler{registry: r}
}

// ServeHTTP lists every registered backend, available or not, and the
// currently active one.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, listModelsResponse{
		Models:  h.registry.List(),
		Current: h.registry.Active().ID,
	})
}
