package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// clampHP enforces 0 <= hp <= maxHp.
func clampHP(hp, maxHP int) int {
	if hp < 0 {
		return 0
	}
	if hp > maxHP {
		return maxHP
	}
	return hp
}

// List returns the current character array. Never fails: unreadable
// documents fall back to an empty roster.
func (s *Store) List() []CharacterRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readCharactersLocked()
}

// Get returns the character with the given id.
func (s *Store) Get(id string) (CharacterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.readCharactersLocked() {
		if c.ID == id {
			return c, nil
		}
	}
	return CharacterRecord{}, ErrCharacterNotFound
}

// Create appends a new character, assigning its id and creation time. The
// name must be present and unique. Returns the updated roster and the stored
// record.
func (s *Store) Create(draft CharacterRecord) ([]CharacterRecord, CharacterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.Name == "" {
		return nil, CharacterRecord{}, ErrNameRequired
	}
	chars := s.readCharactersLocked()
	for _, c := range chars {
		if c.Name == draft.Name {
			return nil, CharacterRecord{}, ErrNameTaken
		}
	}

	draft.ID = uuid.NewString()
	draft.CreatedAt = time.Now().UTC()
	if draft.MaxHP < 0 {
		draft.MaxHP = 0
	}
	draft.HP = clampHP(draft.HP, draft.MaxHP)

	chars = append(chars, draft)
	if err := writeDocument(s.charactersPath(), chars); err != nil {
		return nil, CharacterRecord{}, err
	}
	return chars, draft, nil
}

// MergeByID applies patch to the stored record without persisting, returning
// the merged record alongside the stored one. Only fields named in the patch
// change; hp is validated and clamped against the effective maxHp.
func (s *Store) MergeByID(id string, patch CharacterPatch) (merged, prev CharacterRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chars := s.readCharactersLocked()
	idx := -1
	for i, c := range chars {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return CharacterRecord{}, CharacterRecord{}, ErrCharacterNotFound
	}
	prev = chars[idx]
	merged = prev

	if patch.Name != nil {
		if *patch.Name == "" {
			return CharacterRecord{}, CharacterRecord{}, ErrNameRequired
		}
		for i, c := range chars {
			if i != idx && c.Name == *patch.Name {
				return CharacterRecord{}, CharacterRecord{}, ErrNameTaken
			}
		}
		merged.Name = *patch.Name
	}
	if patch.MaxHP != nil {
		if *patch.MaxHP < 0 {
			return CharacterRecord{}, CharacterRecord{}, fmt.Errorf("%w: maxHp %d", ErrInvalidHP, *patch.MaxHP)
		}
		merged.MaxHP = *patch.MaxHP
	}
	if patch.HP != nil {
		if *patch.HP < 0 {
			return CharacterRecord{}, CharacterRecord{}, fmt.Errorf("%w: %d", ErrInvalidHP, *patch.HP)
		}
		merged.HP = *patch.HP
	}
	merged.HP = clampHP(merged.HP, merged.MaxHP)
	if patch.Icon != nil {
		merged.Icon = patch.Icon
	}
	return merged, prev, nil
}

// Save replaces the stored record with the same id and persists the roster.
// Returns the updated roster.
func (s *Store) Save(rec CharacterRecord) ([]CharacterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chars := s.readCharactersLocked()
	for i, c := range chars {
		if c.ID == rec.ID {
			chars[i] = rec
			if err := writeDocument(s.charactersPath(), chars); err != nil {
				return nil, err
			}
			return chars, nil
		}
	}
	return nil, ErrCharacterNotFound
}

// DeleteByID removes the record with the given id, returning the removed
// record (nil when no such id existed) and the remaining roster. Deleting an
// unknown id is not an error.
func (s *Store) DeleteByID(id string) (*CharacterRecord, []CharacterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chars := s.readCharactersLocked()
	var removed *CharacterRecord
	remaining := make([]CharacterRecord, 0, len(chars))
	for _, c := range chars {
		if c.ID == id {
			cc := c
			removed = &cc
			continue
		}
		remaining = append(remaining, c)
	}
	if removed == nil {
		return nil, chars, nil
	}
	if err := writeDocument(s.charactersPath(), remaining); err != nil {
		return nil, nil, err
	}
	return removed, remaining, nil
}
