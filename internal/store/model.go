package store

import "time"

// CharacterRecord is one roster entry. Icon holds the public URL of an
// uploaded image ("/uploads/<name>") or nil when no icon is set.
type CharacterRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	HP        int       `json:"hp"`
	MaxHP     int       `json:"maxHp"`
	Icon      *string   `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
}

// CharacterPatch is a partial update. Nil fields leave the current value
// unchanged; only the fields listed here can enter the store.
type CharacterPatch struct {
	Name  *string `json:"name"`
	HP    *int    `json:"hp"`
	MaxHP *int    `json:"maxHp"`
	Icon  *string `json:"icon"`
}

type GeneralSettings struct {
	Language string `json:"language"`
}

type OverlaySettings struct {
	ShowIcon           bool    `json:"show_icon"`
	ShowCharacterIcon  bool    `json:"show_character_icon"`
	ShowHealth         bool    `json:"show_health"`
	ShowName           bool    `json:"show_name"`
	FontSize           int     `json:"font_size"`
	FontFamily         string  `json:"font_family"`
	FontColor          string  `json:"font_color"`
	IconsSize          int     `json:"icons_size"`
	CharacterIconSize  int     `json:"character_icon_size"`
	HealthIconFilePath *string `json:"health_icon_file_path"`
}

// Settings is the full configuration document. Its top-level shape is fixed:
// updates may only name sections that already exist.
type Settings struct {
	General GeneralSettings `json:"general"`
	Overlay OverlaySettings `json:"overlay"`
}

// DefaultSettings returns the document persisted on first read.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{Language: "pt-BR"},
		Overlay: OverlaySettings{
			ShowIcon:          true,
			ShowCharacterIcon: true,
			ShowHealth:        true,
			ShowName:          true,
			FontSize:          14,
			FontFamily:        "Arial",
			FontColor:         "#FFFFFF",
			IconsSize:         64,
			CharacterIconSize: 170,
		},
	}
}
