package store

import (
	"encoding/json"
	"fmt"
)

// Settings returns the current settings document.
func (s *Store) Settings() *Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSettingsLocked()
}

// MergeSettings validates patch against the current document and returns the
// merged result alongside the current one, without persisting. Unknown
// top-level keys are rejected; a named section replaces the current section
// wholesale. Validation is intentionally shallow: fields inside a section are
// not checked beyond JSON shape.
func (s *Store) MergeSettings(patch map[string]json.RawMessage) (merged, current *Settings, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range patch {
		switch key {
		case "general", "overlay":
		default:
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownSettingsKey, key)
		}
	}

	current = s.readSettingsLocked()
	next := *current
	if raw, ok := patch["general"]; ok {
		var section GeneralSettings
		if err := json.Unmarshal(raw, &section); err != nil {
			return nil, nil, fmt.Errorf("%w: general section: %v", ErrInvalidSettings, err)
		}
		next.General = section
	}
	if raw, ok := patch["overlay"]; ok {
		var section OverlaySettings
		if err := json.Unmarshal(raw, &section); err != nil {
			return nil, nil, fmt.Errorf("%w: overlay section: %v", ErrInvalidSettings, err)
		}
		next.Overlay = section
	}
	return &next, current, nil
}

// WriteSettings persists the settings document.
func (s *Store) WriteSettings(v *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeDocument(s.settingsPath(), v)
}
