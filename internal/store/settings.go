package store

import (
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned when a requested setting does not exist.
var ErrNotFound = errors.New("not found")

// Setting keys.
const (
	keyActiveModel = "active_model"
	keyCameraIndex = "camera_index"
)

// SettingsRepository provides read/write access to persisted settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get retrieves a setting value by key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores a setting value, replacing any previous one.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// ActiveModel returns the persisted active model id.
func (r *SettingsRepository) ActiveModel() (string, error) {
	return r.Get(keyActiveModel)
}

// SaveActiveModel persists the active model id.
func (r *SettingsRepository) SaveActiveModel(id string) error {
	return r.Set(keyActiveModel, id)
}

// CameraIndex returns the persisted camera index.
func (r *SettingsRepository) CameraIndex() (int, error) {
	v, err := r.Get(keyCameraIndex)
	if err != nil {
		return 0, err
	}

	idx, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return idx, nil
}

// SaveCameraIndex persists the camera index.
func (r *SettingsRepository) SaveCameraIndex(index int) error {
	return r.Set(keyCameraIndex, strconv.Itoa(index))
}
