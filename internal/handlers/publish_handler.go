package handlers

import (
	"errors"
	"net/http"

	"github.com/go-socialhub/socialhub/internal/platform/settings"
	"github.com/go-socialhub/socialhub/internal/services"
	"github.com/go-socialhub/socialhub/internal/util"

	"github.com/gin-gonic/gin"
)

// PublishHandler serves publish requests and publish history.
type PublishHandler struct {
	publish *services.PublishService
}

// NewPublishHandler creates a new publish handler
func NewPublishHandler(publish *services.PublishService) *PublishHandler {
	return &PublishHandler{publish: publish}
}

// Publish performs one publish attempt of a content item to an account.
//
// @Summary  Publish content to a platform account
// @Tags     publish
// @Accept   json
// @Produce  json
// @Param    request body services.PublishRequest true "Publish request"
// @Success  200 {object} models.ContentPublication
// @Failure  400 {object} map[string]any
// @Failure  404 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Router   /api/publish [post]
func (h *PublishHandler) Publish(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	var req services.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.AccountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return
	}
	if req.ContentID == "" && req.Text == "" && len(req.Images) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content_id or inline text/images required"})
		return
	}

	pub, err := h.publish.Publish(c.Request.Context(), userID, req)
	if err != nil {
		var limitErr *services.ContentLimitError
		switch {
		case errors.As(err, &limitErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      "content exceeds platform limits",
				"violations": limitErr.Violations,
			})
		case errors.Is(err, services.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, services.ErrContentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		case errors.Is(err, services.ErrConfigNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "publish config not found"})
		case errors.Is(err, services.ErrAccountNotConnected):
			c.JSON(http.StatusConflict, gin.H{"error": "account is not connected"})
		case errors.Is(err, services.ErrReauthRequired):
			c.JSON(http.StatusConflict, gin.H{"error": "re-authorization required"})
		case errors.Is(err, services.ErrConfigPlatformMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "publish config is for a different platform"})
		case errors.Is(err, settings.ErrTypeMismatch),
			errors.Is(err, settings.ErrUnknownType),
			errors.Is(err, settings.ErrSchema):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "publish failed"})
		}
		return
	}

	c.JSON(http.StatusOK, pub)
}

// History lists the publish attempts of one content item.
//
// @Summary  List publish attempts for a content item
// @Tags     publish
// @Produce  json
// @Param    id path string true "Content ID"
// @Success  200 {array} models.ContentPublication
// @Failure  404 {object} map[string]string
// @Router   /api/content/{id}/publications [get]
func (h *PublishHandler) History(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	pubs, err := h.publish.ListPublications(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list publications"})
		return
	}

	c.JSON(http.StatusOK, pubs)
}
