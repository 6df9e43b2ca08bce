package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hpoverlay/internal/hub"
	"hpoverlay/internal/metrics"
	"hpoverlay/internal/registry"
	"hpoverlay/internal/service/roster"
	"hpoverlay/internal/store"
)

const (
	sessionHeader    = "X-Session-Id"
	defaultSessionID = "default"

	maxUploadBytes = 10 << 20 // 10 MB
)

// Handler wires HTTP routes to the roster service and the file registry.
type Handler struct {
	roster   *roster.Service
	registry *registry.Registry
	hub      *hub.Hub
	metrics  *metrics.Collector
	uploads  *uploadLimiter
}

// NewHandler constructs a Handler instance.
func NewHandler(svc *roster.Service, reg *registry.Registry, h *hub.Hub, collector *metrics.Collector) *Handler {
	return &Handler{
		roster:   svc,
		registry: reg,
		hub:      h,
		metrics:  collector,
		uploads:  newUploadLimiter(),
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/settings", h.getSettings)
	api.PUT("/settings", h.putSettings)
	api.POST("/upload", h.uploadFile)
	api.POST("/confirm-file", h.confirmFile)
	api.DELETE("/cleanup-session", h.cleanupSession)
	api.DELETE("/delete-file", h.deleteFile)
	api.GET("/characters", h.listCharacters)
	api.POST("/characters", h.createCharacter)
	api.PUT("/characters/:id", h.updateCharacter)
	api.DELETE("/characters/:id", h.deleteCharacter)

	router.GET("/overlay/:id", h.renderOverlay)
	router.GET("/ws", gin.WrapH(h.hub.Handler(h.roster.ApplyCharacterUpdate)))
	router.Static("/uploads", h.registry.UploadDir())
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
}

func sessionID(c *gin.Context) string {
	if id := c.GetHeader(sessionHeader); id != "" {
		return id
	}
	return defaultSessionID
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.roster.Settings())
}

func (h *Handler) putSettings(c *gin.Context) {
	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings body"})
		return
	}
	merged, err := h.roster.UpdateSettings(patch)
	if err != nil {
		if errors.Is(err, store.ErrUnknownSettingsKey) || errors.Is(err, store.ErrInvalidSettings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}
	c.JSON(http.StatusCreated, merged)
}

func (h *Handler) uploadFile(c *gin.Context) {
	session := sessionID(c)
	if !h.uploads.allow(session) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many uploads"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open file failed"})
		return
	}
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	_ = f.Close()
	contentType := http.DetectContentType(buf[:n])
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}

	fileName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename))
	destPath := filepath.Join(h.registry.UploadDir(), fileName)
	if err := c.SaveUploadedFile(file, destPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save file failed"})
		return
	}

	h.registry.Register(session, fileName)
	h.metrics.RecordUpload()
	c.JSON(http.StatusOK, gin.H{
		"url":      roster.UploadURLPrefix + fileName,
		"fileName": fileName,
	})
}

type fileNameRequest struct {
	FileName string `json:"fileName"`
}

func (h *Handler) confirmFile(c *gin.Context) {
	var req fileNameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName is required"})
		return
	}
	h.registry.Confirm(roster.FileNameFromURL(req.FileName))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) cleanupSession(c *gin.Context) {
	h.registry.CleanupSession(sessionID(c))
	h.uploads.prune()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) deleteFile(c *gin.Context) {
	var req fileNameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName is required"})
		return
	}
	h.registry.DeleteFile(roster.FileNameFromURL(req.FileName))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) listCharacters(c *gin.Context) {
	c.JSON(http.StatusOK, h.roster.Characters())
}

type createCharacterRequest struct {
	Name  string  `json:"name"`
	HP    int     `json:"hp"`
	MaxHP int     `json:"maxHp"`
	Icon  *string `json:"icon"`
}

func (h *Handler) createCharacter(c *gin.Context) {
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid character body"})
		return
	}
	chars, _, err := h.roster.CreateCharacter(store.CharacterRecord{
		Name:  req.Name,
		HP:    req.HP,
		MaxHP: req.MaxHP,
		Icon:  req.Icon,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, store.ErrNameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create character"})
		}
		return
	}
	c.JSON(http.StatusCreated, chars)
}

func (h *Handler) updateCharacter(c *gin.Context) {
	var patch store.CharacterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid character body"})
		return
	}
	updated, err := h.roster.UpdateCharacter(c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrCharacterNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, store.ErrInvalidHP), errors.Is(err, store.ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, store.ErrNameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update character"})
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteCharacter(c *gin.Context) {
	if _, err := h.roster.DeleteCharacter(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete character"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
