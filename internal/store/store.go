// Package store persists the settings and characters documents as JSON files
// under a data directory. Reads are fail-soft: a missing document is seeded
// with its default, an unreadable one falls back to the default without
// touching disk. Writes are the only hard-failure path.
package store

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	settingsFile   = "settings.json"
	charactersFile = "characters.json"
)

var errEmptyDocument = errors.New("empty document")

// Store owns the two JSON documents. A single mutex serializes every
// read-modify-write cycle so concurrent mutations cannot clobber each other.
type Store struct {
	mu      sync.Mutex
	dataDir string
}

// New creates a Store rooted at dataDir and seeds both documents with their
// defaults when absent, matching first-run behavior.
func New(dataDir string) (*Store, error) {
	s := &Store{dataDir: dataDir}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s.readSettingsLocked()
	s.readCharactersLocked()
	return s, nil
}

func (s *Store) settingsPath() string {
	return filepath.Join(s.dataDir, settingsFile)
}

func (s *Store) charactersPath() string {
	return filepath.Join(s.dataDir, charactersFile)
}

// readDocument decodes the JSON file at path into out. It reports
// os.ErrNotExist for a missing file and errEmptyDocument for a blank one so
// callers can decide whether the fallback should be persisted.
func readDocument(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errEmptyDocument
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	return nil
}

// writeDocument persists value at path, creating the directory structure as
// needed. Errors propagate: a failed write must surface to the caller.
func writeDocument(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func (s *Store) readSettingsLocked() *Settings {
	var v Settings
	err := readDocument(s.settingsPath(), &v)
	if err == nil {
		return &v
	}
	def := DefaultSettings()
	if errors.Is(err, os.ErrNotExist) {
		if werr := writeDocument(s.settingsPath(), def); werr != nil {
			log.Printf("seed settings document: %v", werr)
		}
		return def
	}
	log.Printf("read settings document: %v", err)
	return def
}

func (s *Store) readCharactersLocked() []CharacterRecord {
	var v []CharacterRecord
	err := readDocument(s.charactersPath(), &v)
	if err == nil {
		if v == nil {
			v = []CharacterRecord{}
		}
		return v
	}
	def := []CharacterRecord{}
	if errors.Is(err, os.ErrNotExist) {
		if werr := writeDocument(s.charactersPath(), def); werr != nil {
			log.Printf("seed characters document: %v", werr)
		}
		return def
	}
	log.Printf("read characters document: %v", err)
	return def
}
