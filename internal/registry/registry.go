// Package registry tracks the registered classifier backends, which one
// is active, and the process-wide settings.
package registry

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/frankletsbe/recognise-emotion/internal/classifier"
	"github.com/frankletsbe/recognise-emotion/internal/emotion"
	"github.com/frankletsbe/recognise-emotion/internal/store"
)

// ModelDescriptor identifies a registered backend.
type ModelDescriptor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Backend describes how to probe and load one classifier variant.
// Probe is a cheap existence check (file present, service configured)
// that must not load weights; Load constructs the backend and is called
// at most once per process.
type Backend struct {
	ID    string
	Name  string
	Probe func() bool
	Load  func() (classifier.Classifier, error)
}

// Settings is the process-wide mutable configuration. Reads always see
// a consistent pair.
type Settings struct {
	ModelID     string `json:"model_type"`
	CameraIndex int    `json:"camera_index"`
}

type entry struct {
	backend   Backend
	available bool
	loaded    bool
	instance  classifier.Classifier
}

// Registry is the process-wide model selector. Loading and switching are
// single-writer; reads and inference against an already-captured backend
// reference never block each other.
type Registry struct {
	mu          sync.RWMutex
	order       []string
	entries     map[string]*entry
	activeID    string
	cameraIndex int
	settings    *store.SettingsRepository
}

// New creates an empty registry. The settings repository is optional;
// when present, the active model and camera index are persisted across
// restarts.
func New(settings *store.SettingsRepository) *Registry {
	return &Registry{
		entries:  make(map[string]*entry),
		settings: settings,
	}
}

// Register adds a backend and runs its availability probe. The first
// available backend becomes the default active model.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	available := b.Probe == nil || b.Probe()
	r.entries[b.ID] = &entry{backend: b, available: available}
	r.order = append(r.order, b.ID)

	if r.activeID == "" && available {
		r.activeID = b.ID
	}
}

// Restore applies persisted settings, if any. Call after all backends
// are registered. A persisted model id that is no longer registered or
// available is ignored.
func (r *Registry) Restore() {
	if r.settings == nil {
		return
	}

	if id, err := r.settings.ActiveModel(); err == nil {
		r.mu.Lock()
		if e, ok := r.entries[id]; ok && e.available {
			r.activeID = id
		}
		r.mu.Unlock()
	}

	if idx, err := r.settings.CameraIndex(); err == nil {
		r.mu.Lock()
		r.cameraIndex = idx
		r.mu.Unlock()
	}
}

// List returns descriptors for every registered backend in registration
// order. Unavailable backends are listed with Available=false.
func (r *Registry) List() []ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ModelDescriptor, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		out = append(out, ModelDescriptor{ID: id, Name: e.backend.Name, Available: e.available})
	}
	return out
}

// Active returns the descriptor of the currently active backend.
func (r *Registry) Active() ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[r.activeID]
	if !ok {
		return ModelDescriptor{}
	}
	return ModelDescriptor{ID: r.activeID, Name: e.backend.Name, Available: e.available}
}

// ActiveClassifier returns the active backend id and a loaded instance.
// The reference is captured once; a concurrent SetActive does not affect
// callers that already hold it. The backend is loaded lazily on first
// use.
func (r *Registry) ActiveClassifier() (string, classifier.Classifier, error) {
	r.mu.RLock()
	id := r.activeID
	e, ok := r.entries[id]
	if ok && e.loaded {
		inst := e.instance
		r.mu.RUnlock()
		return id, inst, nil
	}
	r.mu.RUnlock()

	if !ok {
		return "", nil, emotion.ErrModelUnavailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The active backend may have changed while upgrading the lock.
	id = r.activeID
	e, ok = r.entries[id]
	if !ok {
		return "", nil, emotion.ErrModelUnavailable
	}

	if err := r.load(e); err != nil {
		return "", nil, err
	}
	return id, e.instance, nil
}

// SetActive switches the active backend, loading it first if needed.
// Fails with UnknownModel for an unregistered id and ModelUnavailable
// for a registered backend that cannot be loaded; in both cases the
// previously active backend stays in place.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", emotion.ErrUnknownModel, id)
	}

	if err := r.load(e); err != nil {
		return err
	}

	r.activeID = id
	r.persistModel(id)
	return nil
}

// load constructs the singleton instance for an entry. Callers hold the
// write lock. A failed load marks the backend unavailable for the rest
// of the process lifetime.
func (r *Registry) load(e *entry) error {
	if e.loaded {
		return nil
	}
	if !e.available {
		return fmt.Errorf("%w: %s", emotion.ErrModelUnavailable, e.backend.ID)
	}

	inst, err := e.backend.Load()
	if err != nil {
		e.available = false
		if errors.Is(err, emotion.ErrModelUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", emotion.ErrModelUnavailable, err)
	}

	e.instance = inst
	e.loaded = true
	return nil
}

// Settings returns an atomic snapshot of the process settings.
func (r *Registry) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Settings{ModelID: r.activeID, CameraIndex: r.cameraIndex}
}

// SetCameraIndex updates the active capture device.
func (r *Registry) SetCameraIndex(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cameraIndex = index
	if r.settings != nil {
		if err := r.settings.SaveCameraIndex(index); err != nil {
			log.Printf("Failed to persist camera index: %v", err)
		}
	}
}

// persistModel writes the active model id. Callers hold the write lock.
func (r *Registry) persistModel(id string) {
	if r.settings == nil {
		return
	}
	if err := r.settings.SaveActiveModel(id); err != nil {
		log.Printf("Failed to persist active model: %v", err)
	}
}

// Close releases every loaded backend.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, id := range r.order {
		e := r.entries[id]
		if !e.loaded {
			continue
		}
		if err := e.instance.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.loaded = false
		e.instance = nil
	}
	return firstErr
}
