// Package app wires the components of the emotion recognition service
// together.
package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/frankletsbe/recognise-emotion/internal/capture"
	"github.com/frankletsbe/recognise-emotion/internal/classifier"
	"github.com/frankletsbe/recognise-emotion/internal/locator"
	"github.com/frankletsbe/recognise-emotion/internal/pipeline"
	"github.com/frankletsbe/recognise-emotion/internal/registry"
	"github.com/frankletsbe/recognise-emotion/internal/store"
)

// Model weight filenames resolved under ModelDir.
const (
	onnxWeights       = "emotion_model.onnx"
	tensorflowWeights = "emotion_model.pb"
)

// remoteTimeout bounds every call to the remote analysis service.
const remoteTimeout = 30 * time.Second

// Config holds configuration options for the application.
type Config struct {
	// DBPath locates the settings database. Empty disables persistence.
	DBPath string
	// ModelDir holds the local model weight files.
	ModelDir string
	// DeepFaceURL points at a remote face-analysis service. Empty leaves
	// the remote backend unregistered.
	DeepFaceURL string
	// CascadePath overrides the cascade file search.
	CascadePath string
}

// App owns the long-lived components: the store, the model registry,
// the face locator, the prediction pipeline and the capture device.
type App struct {
	config   Config
	store    *store.Store
	registry *registry.Registry
	locator  locator.Locator
	pipeline *pipeline.Pipeline

	mu     sync.RWMutex
	camera capture.Camera
}

// New builds the application. Backends are registered and probed here;
// none of them loads weights until first use.
func New(config Config) (*App, error) {
	a := &App{config: config}

	var settings *store.SettingsRepository
	if config.DBPath != "" {
		st, err := store.New(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = st
		settings = st.Settings()
	}

	a.registry = registry.New(settings)
	a.registerBackends()
	a.registry.Restore()

	a.locator = a.buildLocator()
	a.pipeline = pipeline.New(a.locator, a.registry)
	a.camera = capture.NewCamera(a.registry.Settings().CameraIndex)

	return a, nil
}

// registerBackends declares the three classifier variants. Probes are
// cheap existence checks; a backend whose probe fails stays listed as
// unavailable.
func (a *App) registerBackends() {
	onnxPath := filepath.Join(a.config.ModelDir, onnxWeights)
	a.registry.Register(registry.Backend{
		ID:    "onnx",
		Name:  "Lightweight CNN",
		Probe: func() bool { return fileExists(onnxPath) },
		Load: func() (classifier.Classifier, error) {
			return classifier.NewONNXClassifier(onnxPath)
		},
	})

	tfPath := filepath.Join(a.config.ModelDir, tensorflowWeights)
	a.registry.Register(registry.Backend{
		ID:    "tensorflow",
		Name:  "Deep CNN",
		Probe: func() bool { return fileExists(tfPath) },
		Load: func() (classifier.Classifier, error) {
			return classifier.NewTensorFlowClassifier(tfPath)
		},
	})

	if url := a.config.DeepFaceURL; url != "" {
		a.registry.Register(registry.Backend{
			ID:   "deepface",
			Name: "Remote analyzer",
			Load: func() (classifier.Classifier, error) {
				return classifier.NewRemoteClassifier(url, remoteTimeout)
			},
		})
	}
}

// buildLocator prefers the Haar cascade; without a cascade file every
// request reports no face, which keeps the API answering instead of
// crashing.
func (a *App) buildLocator() locator.Locator {
	path := a.config.CascadePath
	if path == "" {
		path = locator.FindCascade()
	}
	if path == "" {
		log.Println("No face cascade found, face detection disabled")
		return locator.NewMockLocator()
	}

	loc, err := locator.NewCascadeLocator(path, locator.DefaultConfig())
	if err != nil {
		log.Printf("Failed to load cascade %s (%v), face detection disabled", path, err)
		return locator.NewMockLocator()
	}

	log.Printf("Using face cascade %s", path)
	return loc
}

// Start opens the capture device. A missing camera is logged, not
// fatal; upload predictions work without one.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Open(); err != nil {
		log.Printf("Camera %d unavailable: %v", a.camera.Index(), err)
	}
	return nil
}

// Stop releases every component.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.locator.Close(); err != nil {
		log.Printf("Error closing locator: %v", err)
	}
	if err := a.registry.Close(); err != nil {
		log.Printf("Error closing registry: %v", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}
}

// ApplySettings reacts to a settings change. A new camera index swaps
// the capture device; the old one is closed first so the new device can
// grab it.
func (a *App) ApplySettings(s registry.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.camera.Index() == s.CameraIndex {
		return
	}

	wasOpen := a.camera.IsOpen()
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera %d: %v", a.camera.Index(), err)
	}

	a.camera = capture.NewCamera(s.CameraIndex)
	if wasOpen {
		if err := a.camera.Open(); err != nil {
			log.Printf("Camera %d unavailable: %v", s.CameraIndex, err)
		}
	}
	log.Printf("Switched to camera %d", s.CameraIndex)
}

// Camera returns the capture device currently in use.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Registry returns the model registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Pipeline returns the prediction pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
