package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frankletsbe/recognise-emotion/internal/capture"
	"github.com/frankletsbe/recognise-emotion/internal/emotion"
	"github.com/frankletsbe/recognise-emotion/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LiveHandler broadcasts real-time emotion predictions via WebSocket.
type LiveHandler struct {
	camera    func() capture.Camera
	predictor FramePredictor
	clients   map[*websocket.Conn]bool
	mu        sync.RWMutex
}

// NewLiveHandler creates a LiveHandler and starts its broadcast loop.
func NewLiveHandler(camera func() capture.Camera, predictor FramePredictor) *LiveHandler {
	h := &LiveHandler{
		camera:    camera,
		predictor: predictor,
		clients:   make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast classifies frames and pushes the result to all connected
// clients. Frames are skipped entirely while nobody is listening.
func (h *LiveHandler) broadcast() {
	ticker := time.NewTicker(200 * time.Millisecond) // ~5 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		cam := h.camera()
		if cam == nil {
			continue
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			continue
		}

		resp, err := h.predictor.PredictFrame(frame)
		frame.Close()

		msg := liveMessage(resp, err)
		if msg == nil {
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}

// liveMessage builds the broadcast payload. A frame without a face is
// still reported so clients can clear their overlay; other failures
// produce no message.
func liveMessage(resp *pipeline.Response, err error) []byte {
	now := time.Now().UnixMilli()

	if err != nil {
		if errors.Is(err, emotion.ErrNoFaceDetected) {
			msg, _ := json.Marshal(map[string]any{
				"success":   false,
				"error":     "no_face",
				"timestamp": now,
			})
			return msg
		}
		return nil
	}

	msg, _ := json.Marshal(map[string]any{
		"success":    true,
		"prediction": resp.Prediction,
		"confidence": resp.Confidence,
		"box":        resp.Box,
		"model":      resp.Model,
		"timestamp":  now,
	})
	return msg
}
