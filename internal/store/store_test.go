package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestNewSeedsDefaultDocuments(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(dir); err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, name := range []string{settingsFile, charactersFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be seeded: %v", name, err)
		}
	}
}

func TestReadFailSoft(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	// Corrupt document falls back to the default without rewriting it.
	corrupt := []byte("{not json")
	if err := os.WriteFile(filepath.Join(dir, settingsFile), corrupt, 0o644); err != nil {
		t.Fatalf("write corrupt settings: %v", err)
	}
	got := s.Settings()
	if got.General.Language != "pt-BR" {
		t.Errorf("expected default language, got %q", got.General.Language)
	}
	raw, err := os.ReadFile(filepath.Join(dir, settingsFile))
	if err != nil {
		t.Fatalf("read settings file: %v", err)
	}
	if string(raw) != string(corrupt) {
		t.Errorf("fail-soft read must not rewrite the document")
	}

	// Empty document behaves the same.
	if err := os.WriteFile(filepath.Join(dir, charactersFile), nil, 0o644); err != nil {
		t.Fatalf("truncate characters: %v", err)
	}
	if chars := s.List(); len(chars) != 0 {
		t.Errorf("expected empty roster from blank document, got %d", len(chars))
	}
}

func TestCreateCharacter(t *testing.T) {
	s := newTestStore(t)

	chars, created, err := s.Create(CharacterRecord{Name: "Alya", HP: 30, MaxHP: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Errorf("expected generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Errorf("expected creation timestamp")
	}
	if created.HP != 20 {
		t.Errorf("expected hp clamped to maxHp, got %d", created.HP)
	}
	if len(chars) != 1 {
		t.Errorf("expected roster of 1, got %d", len(chars))
	}

	if _, _, err := s.Create(CharacterRecord{MaxHP: 5}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
	if _, _, err := s.Create(CharacterRecord{Name: "Alya"}); !errors.Is(err, ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}
	// Duplicate attempt must not mutate the store.
	if got := len(s.List()); got != 1 {
		t.Errorf("expected exactly one record after duplicate create, got %d", got)
	}
}

func TestMergeByID(t *testing.T) {
	s := newTestStore(t)
	_, created, err := s.Create(CharacterRecord{Name: "Bram", HP: 10, MaxHP: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("partial merge leaves other fields", func(t *testing.T) {
		merged, prev, err := s.MergeByID(created.ID, CharacterPatch{HP: intPtr(4)})
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if prev.HP != 10 {
			t.Errorf("expected prev hp 10, got %d", prev.HP)
		}
		if merged.HP != 4 || merged.Name != "Bram" || merged.MaxHP != 10 {
			t.Errorf("unexpected merge result: %+v", merged)
		}
	})

	t.Run("hp above maxHp clamps", func(t *testing.T) {
		merged, _, err := s.MergeByID(created.ID, CharacterPatch{HP: intPtr(50)})
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if merged.HP != 10 {
			t.Errorf("expected hp clamped to 10, got %d", merged.HP)
		}
	})

	t.Run("lowering maxHp clamps hp", func(t *testing.T) {
		merged, _, err := s.MergeByID(created.ID, CharacterPatch{MaxHP: intPtr(3)})
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if merged.HP != 3 {
			t.Errorf("expected hp clamped to new maxHp 3, got %d", merged.HP)
		}
	})

	t.Run("negative hp rejected", func(t *testing.T) {
		if _, _, err := s.MergeByID(created.ID, CharacterPatch{HP: intPtr(-1)}); !errors.Is(err, ErrInvalidHP) {
			t.Errorf("expected ErrInvalidHP, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, _, err := s.MergeByID("missing", CharacterPatch{}); !errors.Is(err, ErrCharacterNotFound) {
			t.Errorf("expected ErrCharacterNotFound, got %v", err)
		}
	})
}

func TestSaveAndDelete(t *testing.T) {
	s := newTestStore(t)
	_, created, err := s.Create(CharacterRecord{Name: "Cira", HP: 5, MaxHP: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.HP = 2
	chars, err := s.Save(created)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if chars[0].HP != 2 {
		t.Errorf("expected persisted hp 2, got %d", chars[0].HP)
	}

	removed, remaining, err := s.DeleteByID(created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed == nil || removed.ID != created.ID {
		t.Errorf("expected removed record %q, got %+v", created.ID, removed)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty roster, got %d", len(remaining))
	}

	// Deleting an unknown id is tolerated.
	removed, _, err = s.DeleteByID("missing")
	if err != nil || removed != nil {
		t.Errorf("expected silent no-op, got removed=%v err=%v", removed, err)
	}
}

func TestMergeSettings(t *testing.T) {
	s := newTestStore(t)

	t.Run("unknown top-level key rejected", func(t *testing.T) {
		_, _, err := s.MergeSettings(map[string]json.RawMessage{
			"colors": json.RawMessage(`{}`),
		})
		if !errors.Is(err, ErrUnknownSettingsKey) {
			t.Fatalf("expected ErrUnknownSettingsKey, got %v", err)
		}
	})

	t.Run("named section replaced wholesale", func(t *testing.T) {
		merged, current, err := s.MergeSettings(map[string]json.RawMessage{
			"general": json.RawMessage(`{"language":"en-US"}`),
		})
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if merged.General.Language != "en-US" {
			t.Errorf("expected en-US, got %q", merged.General.Language)
		}
		if merged.Overlay != current.Overlay {
			t.Errorf("overlay section must be untouched")
		}
	})

	t.Run("partial section body zeroes omitted fields", func(t *testing.T) {
		merged, _, err := s.MergeSettings(map[string]json.RawMessage{
			"overlay": json.RawMessage(`{"font_size":20}`),
		})
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if merged.Overlay.FontSize != 20 {
			t.Errorf("expected font size 20, got %d", merged.Overlay.FontSize)
		}
		if merged.Overlay.FontFamily != "" {
			t.Errorf("section replacement is wholesale; got font family %q", merged.Overlay.FontFamily)
		}
	})
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	merged, _, err := s.MergeSettings(map[string]json.RawMessage{
		"general": json.RawMessage(`{"language":"en-US"}`),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := s.WriteSettings(merged); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	got := s.Settings()
	if got.General.Language != "en-US" {
		t.Errorf("expected persisted language en-US, got %q", got.General.Language)
	}
	if got.Overlay.FontFamily != "Arial" {
		t.Errorf("expected overlay untouched, got font family %q", got.Overlay.FontFamily)
	}
}

func TestIconFieldMerge(t *testing.T) {
	s := newTestStore(t)
	_, created, err := s.Create(CharacterRecord{Name: "Dane", HP: 1, MaxHP: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	merged, _, err := s.MergeByID(created.ID, CharacterPatch{Icon: strPtr("/uploads/a.png")})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Icon == nil || *merged.Icon != "/uploads/a.png" {
		t.Errorf("expected icon set, got %v", merged.Icon)
	}

	// A patch without icon leaves it alone.
	if _, err := s.Save(merged); err != nil {
		t.Fatalf("save: %v", err)
	}
	merged, _, err = s.MergeByID(created.ID, CharacterPatch{HP: intPtr(0)})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Icon == nil || *merged.Icon != "/uploads/a.png" {
		t.Errorf("expected icon preserved, got %v", merged.Icon)
	}
}
