package api

import (
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hpoverlay/internal/store"
)

type overlayData struct {
	ID        string
	Character *store.CharacterRecord
	Overlay   store.OverlaySettings
}

// renderOverlay serves the live view for one character. An unknown id still
// renders the page with an empty state; the viewer picks the character up
// over the websocket once it exists.
func (h *Handler) renderOverlay(c *gin.Context) {
	data := overlayData{
		ID:      c.Param("id"),
		Overlay: h.roster.Settings().Overlay,
	}
	if char, err := h.roster.Character(data.ID); err == nil {
		data.Character = &char
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := overlayTmpl.Execute(c.Writer, data); err != nil {
		log.Printf("render overlay %s: %v", data.ID, err)
	}
}

var overlayTmpl = template.Must(template.New("overlay").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1"/>
  <title>Overlay - {{if .Character}}{{.Character.Name}}{{else}}Unknown{{end}}</title>
  <style>
    body { margin:0; background: transparent; }
    .character-overlay {
      font-size: {{.Overlay.FontSize}}px;
      color: {{.Overlay.FontColor}};
      font-family: "{{.Overlay.FontFamily}}", Arial, sans-serif;
      display: flex;
      flex-direction: column;
      align-items: flex-start;
      gap: 4px;
    }
    .character-name {
      font-weight: bold;
      margin: 0;
      {{if not .Overlay.ShowName}}display: none;{{end}}
    }
    .hp-container {
      display: flex;
      align-items: center;
      gap: 6px;
      {{if not .Overlay.ShowHealth}}display: none;{{end}}
    }
    .character-icon {
      width: {{.Overlay.CharacterIconSize}}px;
      height: {{.Overlay.CharacterIconSize}}px;
      object-fit: contain;
      {{if not .Overlay.ShowCharacterIcon}}display: none;{{end}}
    }
    .health-icon {
      width: {{.Overlay.IconsSize}}px;
      height: {{.Overlay.IconsSize}}px;
      object-fit: contain;
      {{if not .Overlay.ShowIcon}}display: none;{{end}}
    }
  </style>
</head>
<body>
  <div class="character-overlay" id="characterOverlay">
    <h3 class="character-name" id="characterName">{{if .Character}}{{.Character.Name}}{{end}}</h3>
    <div class="hp-container" id="hpContainer">
      {{if and .Character .Character.Icon}}<img src="{{.Character.Icon}}" class="character-icon" id="characterIcon"/>{{end}}
      {{if .Overlay.HealthIconFilePath}}<img src="{{.Overlay.HealthIconFilePath}}" class="health-icon" id="healthIcon"/>{{end}}
      <span id="hpText">{{if .Character}}{{.Character.HP}} / {{.Character.MaxHP}}{{else}}&mdash;{{end}}</span>
    </div>
  </div>

  <script>
    const characterId = {{.ID}};

    function applyCharacter(char) {
      const text = document.getElementById("hpText");
      const name = document.getElementById("characterName");
      if (!char) {
        text.innerText = "—";
        name.innerText = "";
        return;
      }
      text.innerText = (char.hp ?? 0) + " / " + (char.maxHp ?? 0);
      name.innerText = char.name || "";

      if (char.icon) {
        let img = document.getElementById("characterIcon");
        if (!img) {
          img = document.createElement("img");
          img.id = "characterIcon";
          img.className = "character-icon";
          document.getElementById("hpContainer").prepend(img);
        }
        img.src = char.icon;
      }
    }

    function applySettings(s) {
      const overlay = document.getElementById("characterOverlay");
      overlay.style.fontSize = s.overlay.font_size + "px";
      overlay.style.color = s.overlay.font_color;
      overlay.style.fontFamily = '"' + s.overlay.font_family + '", Arial, sans-serif';

      document.getElementById("characterName").style.display = s.overlay.show_name ? "block" : "none";
      document.getElementById("hpContainer").style.display = s.overlay.show_health ? "flex" : "none";

      const charIcon = document.getElementById("characterIcon");
      if (charIcon) {
        charIcon.style.display = s.overlay.show_character_icon ? "block" : "none";
        charIcon.style.width = s.overlay.character_icon_size + "px";
        charIcon.style.height = s.overlay.character_icon_size + "px";
      }

      let healthIcon = document.getElementById("healthIcon");
      if (!healthIcon && s.overlay.health_icon_file_path && s.overlay.show_icon) {
        healthIcon = document.createElement("img");
        healthIcon.id = "healthIcon";
        healthIcon.className = "health-icon";
        const container = document.getElementById("hpContainer");
        container.insertBefore(healthIcon, document.getElementById("hpText"));
      }
      if (healthIcon) {
        healthIcon.style.display = s.overlay.show_icon ? "block" : "none";
        healthIcon.style.width = s.overlay.icons_size + "px";
        healthIcon.style.height = s.overlay.icons_size + "px";
        if (s.overlay.health_icon_file_path) {
          healthIcon.src = s.overlay.health_icon_file_path;
        }
      }
    }

    const proto = location.protocol === "https:" ? "wss:" : "ws:";
    const socket = new WebSocket(proto + "//" + location.host + "/ws");
    socket.onmessage = (msg) => {
      const frame = JSON.parse(msg.data);
      if (frame.event === "characterUpdated" && frame.data.id === characterId) {
        applyCharacter(frame.data.character);
      } else if (frame.event === "charactersUpdated") {
        const char = (frame.data || []).find(c => c.id === characterId);
        if (char) applyCharacter(char);
      } else if (frame.event === "settingsUpdated") {
        applySettings(frame.data);
      }
    };

    fetch("/api/characters").then(r => r.json()).then(chars => {
      const char = (chars || []).find(c => c.id === characterId);
      if (char) applyCharacter(char);
    });
  </script>
</body>
</html>
`))
