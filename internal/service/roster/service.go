// Package roster applies character and settings mutations: explicit field
// merges, hp clamping, the icon-replacement protocol against the file
// registry, persistence, and the viewer broadcast. Both the REST handlers and
// the websocket update path go through it.
package roster

import (
	"encoding/json"
	"path"
	"strings"

	"hpoverlay/internal/hub"
	"hpoverlay/internal/registry"
	"hpoverlay/internal/store"
)

// UploadURLPrefix is the public prefix under which blobs are served.
const UploadURLPrefix = "/uploads/"

// Service coordinates the record store, the file registry and the hub.
type Service struct {
	store    *store.Store
	registry *registry.Registry
	hub      *hub.Hub
}

func NewService(st *store.Store, reg *registry.Registry, h *hub.Hub) *Service {
	return &Service{store: st, registry: reg, hub: h}
}

// FileNameFromURL extracts the blob file name from a public icon URL.
func FileNameFromURL(url string) string {
	return path.Base(strings.TrimPrefix(url, UploadURLPrefix))
}

// Characters returns the current roster.
func (s *Service) Characters() []store.CharacterRecord {
	return s.store.List()
}

// Character returns one record by id.
func (s *Service) Character(id string) (store.CharacterRecord, error) {
	return s.store.Get(id)
}

// Settings returns the current settings document.
func (s *Service) Settings() *store.Settings {
	return s.store.Settings()
}

// CreateCharacter validates and stores a new character. A temporary icon is
// confirmed before the record persists, so the sweeper can never reclaim a
// file the roster references.
func (s *Service) CreateCharacter(draft store.CharacterRecord) ([]store.CharacterRecord, store.CharacterRecord, error) {
	if draft.Name == "" {
		return nil, store.CharacterRecord{}, store.ErrNameRequired
	}
	for _, c := range s.store.List() {
		if c.Name == draft.Name {
			return nil, store.CharacterRecord{}, store.ErrNameTaken
		}
	}
	if draft.Icon != nil && *draft.Icon != "" {
		s.registry.Confirm(FileNameFromURL(*draft.Icon))
	}
	chars, created, err := s.store.Create(draft)
	if err != nil {
		return nil, store.CharacterRecord{}, err
	}
	s.hub.Broadcast(hub.EventCharactersUpdated, chars)
	return chars, created, nil
}

// UpdateCharacter merges patch into the record with the given id. When the
// patch carries a different icon, the superseded blob is deleted and the new
// one confirmed before the record persists.
func (s *Service) UpdateCharacter(id string, patch store.CharacterPatch) (store.CharacterRecord, error) {
	merged, prev, err := s.store.MergeByID(id, patch)
	if err != nil {
		return store.CharacterRecord{}, err
	}

	if patch.Icon != nil && *patch.Icon != "" {
		newIcon := *patch.Icon
		if prev.Icon == nil || *prev.Icon != newIcon {
			if prev.Icon != nil {
				s.registry.DeleteFile(FileNameFromURL(*prev.Icon))
			}
			s.registry.Confirm(FileNameFromURL(newIcon))
		}
	}

	chars, err := s.store.Save(merged)
	if err != nil {
		return store.CharacterRecord{}, err
	}
	s.hub.Broadcast(hub.EventCharactersUpdated, chars)
	s.hub.Broadcast(hub.EventCharacterUpdated, map[string]any{"id": id, "character": merged})
	return merged, nil
}

// ApplyCharacterUpdate is the websocket entry point for updateCharacter
// frames. It decodes the payload into a CharacterPatch and runs the same
// merge path as the REST update.
func (s *Service) ApplyCharacterUpdate(id string, data json.RawMessage) error {
	var patch store.CharacterPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return err
	}
	_, err := s.UpdateCharacter(id, patch)
	return err
}

// DeleteCharacter removes a record, releasing its icon blob first. Deleting
// an unknown id succeeds without touching anything.
func (s *Service) DeleteCharacter(id string) ([]store.CharacterRecord, error) {
	if c, err := s.store.Get(id); err == nil && c.Icon != nil && *c.Icon != "" {
		s.registry.DeleteFile(FileNameFromURL(*c.Icon))
	}
	_, remaining, err := s.store.DeleteByID(id)
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(hub.EventCharactersUpdated, remaining)
	return remaining, nil
}

// UpdateSettings validates and persists a settings patch. A changed health
// icon follows the same replace-then-confirm protocol as character icons.
func (s *Service) UpdateSettings(patch map[string]json.RawMessage) (*store.Settings, error) {
	merged, current, err := s.store.MergeSettings(patch)
	if err != nil {
		return nil, err
	}

	if _, ok := patch["overlay"]; ok {
		if newIcon := merged.Overlay.HealthIconFilePath; newIcon != nil && *newIcon != "" {
			old := current.Overlay.HealthIconFilePath
			if old != nil && *old != *newIcon {
				s.registry.DeleteFile(FileNameFromURL(*old))
			}
			s.registry.Confirm(FileNameFromURL(*newIcon))
		}
	}

	if err := s.store.WriteSettings(merged); err != nil {
		return nil, err
	}
	s.hub.Broadcast(hub.EventSettingsUpdated, merged)
	return merged, nil
}
