package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/frankletsbe/recognise-emotion/internal/app"
	"github.com/frankletsbe/recognise-emotion/internal/server"
)

func main() {
	fmt.Println("recognise-emotion - Facial Emotion Recognition Service")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".emotiond")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	a, err := app.New(app.Config{
		DBPath:      filepath.Join(dataDir, "emotiond.db"),
		ModelDir:    envOr("MODEL_DIR", "models"),
		DeepFaceURL: os.Getenv("DEEPFACE_URL"),
		CascadePath: os.Getenv("CASCADE_FILE"),
	})
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Stop()

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	webDir := os.Getenv("STATIC_DIR")
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Registry:   a.Registry(),
		Predictor:  a.Pipeline(),
		Camera:     a.Camera,
		OnSettings: a.ApplySettings,
	})

	addr := ":" + envOr("PORT", "8080")
	fmt.Printf("Starting server on %s\n", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// envOr returns the environment variable value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.emotiond/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".emotiond", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
