// Package server provides the HTTP server for the emotion recognition
// service.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/frankletsbe/recognise-emotion/internal/capture"
	"github.com/frankletsbe/recognise-emotion/internal/pipeline"
	"github.com/frankletsbe/recognise-emotion/internal/registry"
	"github.com/frankletsbe/recognise-emotion/internal/server/api"
)

// FramePredictor runs the prediction chain over uploads and live frames.
// Satisfied by pipeline.Pipeline.
type FramePredictor interface {
	Predict(data []byte) (*pipeline.Response, error)
	PredictFrame(img *gocv.Mat) (*pipeline.Response, error)
}

// Config holds the server configuration. Nil components disable the
// routes that need them.
type Config struct {
	StaticDir string
	Registry  *registry.Registry
	Predictor FramePredictor

	// Camera returns the capture device currently in use, re-resolved on
	// every frame so a settings change takes effect on live streams.
	Camera func() capture.Camera

	// OnSettings runs after a successful settings update.
	OnSettings func(registry.Settings)
}

// Server is the HTTP front of the service.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	if s.config.Predictor != nil {
		s.mux.Handle("/predict", api.NewPredictHandler(s.config.Predictor))
	}

	if s.config.Registry != nil {
		s.mux.Handle("/api/models", api.NewModelsHandler(s.config.Registry))
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Registry, s.config.OnSettings))
		s.mux.Handle("/api/cameras", api.NewCamerasHandler(func() int {
			return s.config.Registry.Settings().CameraIndex
		}))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera, s.config.Predictor))
	}

	if s.config.Camera != nil && s.config.Predictor != nil {
		s.mux.Handle("/api/live", NewLiveHandler(s.config.Camera, s.config.Predictor))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	available := []string{}
	if s.config.Registry != nil {
		for _, m := range s.config.Registry.List() {
			if m.Available {
				available = append(available, m.ID)
			}
		}
	}

	response := map[string]interface{}{
		"status":           "ok",
		"models_available": available,
		"uptime":           time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
