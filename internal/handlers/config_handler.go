package handlers

import (
	"errors"
	"net/http"

	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/platform/settings"
	"github.com/go-socialhub/socialhub/internal/services"
	"github.com/go-socialhub/socialhub/internal/util"

	"github.com/gin-gonic/gin"
)

// ConfigHandler serves publish-config CRUD.
type ConfigHandler struct {
	configs *services.ConfigService
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(configs *services.ConfigService) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

func (h *ConfigHandler) writeConfigError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrConfigNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "publish config not found"})
	case errors.Is(err, services.ErrConfigPlatformMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform of a config cannot change"})
	case errors.Is(err, settings.ErrTypeMismatch),
		errors.Is(err, settings.ErrUnknownType),
		errors.Is(err, settings.ErrSchema):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "config operation failed"})
	}
}

// List returns the caller's publish configs.
//
// @Summary  List publish configs
// @Tags     configs
// @Produce  json
// @Param    platform query string false "Filter by platform"
// @Success  200 {array} models.PublishConfig
// @Router   /api/configs [get]
func (h *ConfigHandler) List(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	cfgs, err := h.configs.List(userID, platform.Platform(c.Query("platform")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfgs)
}

// Get returns one publish config.
//
// @Summary  Get a publish config
// @Tags     configs
// @Produce  json
// @Param    id path string true "Config ID"
// @Success  200 {object} models.PublishConfig
// @Failure  404 {object} map[string]string
// @Router   /api/configs/{id} [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	cfg, err := h.configs.Get(userID, c.Param("id"))
	if err != nil {
		h.writeConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Create validates and stores a new publish config.
//
// @Summary  Create a publish config
// @Tags     configs
// @Accept   json
// @Produce  json
// @Param    request body services.ConfigInput true "Config definition"
// @Success  201 {object} models.PublishConfig
// @Failure  400 {object} map[string]string
// @Router   /api/configs [post]
func (h *ConfigHandler) Create(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	var in services.ConfigInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg, err := h.configs.Create(userID, in)
	if err != nil {
		h.writeConfigError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// Update saves changes to a publish config.
//
// @Summary  Update a publish config
// @Tags     configs
// @Accept   json
// @Produce  json
// @Param    id      path string               true "Config ID"
// @Param    request body services.ConfigInput true "Config changes"
// @Success  200 {object} models.PublishConfig
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /api/configs/{id} [put]
func (h *ConfigHandler) Update(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	var in services.ConfigInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg, err := h.configs.Update(userID, c.Param("id"), in)
	if err != nil {
		h.writeConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Delete removes a publish config.
//
// @Summary  Delete a publish config
// @Tags     configs
// @Param    id path string true "Config ID"
// @Success  200 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /api/configs/{id} [delete]
func (h *ConfigHandler) Delete(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	if err := h.configs.Delete(userID, c.Param("id")); err != nil {
		h.writeConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
