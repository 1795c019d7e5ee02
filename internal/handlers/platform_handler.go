package handlers

import (
	"net/http"

	"github.com/go-socialhub/socialhub/internal/adapters"
	"github.com/go-socialhub/socialhub/internal/platform"

	"github.com/gin-gonic/gin"
)

// PlatformHandler exposes the static platform registry.
type PlatformHandler struct {
	registry *adapters.Registry
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(registry *adapters.Registry) *PlatformHandler {
	return &PlatformHandler{registry: registry}
}

type platformView struct {
	Platform    platform.Platform `json:"platform"`
	DisplayName string            `json:"display_name"`
	Enabled     bool              `json:"enabled"`
	Limits      platform.Limits   `json:"limits"`
}

// List returns every known platform with its content limits. Enabled marks
// the platforms an adapter is configured for in this deployment.
//
// @Summary  List supported platforms
// @Tags     platforms
// @Produce  json
// @Success  200 {array} handlers.platformView
// @Router   /api/platforms [get]
func (h *PlatformHandler) List(c *gin.Context) {
	enabled := make(map[platform.Platform]bool, 4)
	for _, p := range h.registry.Platforms() {
		enabled[p] = true
	}

	views := make([]platformView, 0, len(platform.All))
	for _, p := range platform.All {
		cfg := platform.MustGetConfig(p)
		views = append(views, platformView{
			Platform:    p,
			DisplayName: cfg.DisplayName,
			Enabled:     enabled[p],
			Limits:      cfg.Limits,
		})
	}
	c.JSON(http.StatusOK, views)
}
