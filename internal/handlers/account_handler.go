package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-socialhub/socialhub/internal/models"
	"github.com/go-socialhub/socialhub/internal/services"
	"github.com/go-socialhub/socialhub/internal/util"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves connected-account queries and actions.
type AccountHandler struct {
	accounts *services.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// accountView is the wire shape of an account. Tokens never leave the
// service.
type accountView struct {
	ID               string     `json:"id"`
	Platform         string     `json:"platform"`
	PlatformUserID   string     `json:"platform_user_id"`
	PlatformUsername string     `json:"platform_username"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	IsConnected      bool       `json:"is_connected"`
	TokenExpiry      *time.Time `json:"token_expiry,omitempty"`
	LastPublishedAt  *time.Time `json:"last_published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toAccountView(a *models.PlatformAccount) accountView {
	return accountView{
		ID:               a.ID,
		Platform:         a.Platform.String(),
		PlatformUserID:   a.PlatformUserID,
		PlatformUsername: a.PlatformUsername,
		AvatarURL:        a.AvatarURL,
		IsConnected:      a.IsConnected,
		TokenExpiry:      a.TokenExpiry,
		LastPublishedAt:  a.LastPublishedAt,
		CreatedAt:        a.CreatedAt,
	}
}

// List returns the caller's connected platform accounts.
//
// @Summary  List platform accounts
// @Tags     accounts
// @Produce  json
// @Success  200 {array} accountView
// @Router   /api/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	accts, err := h.accounts.ListAccounts(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list accounts"})
		return
	}

	views := make([]accountView, 0, len(accts))
	for i := range accts {
		views = append(views, toAccountView(&accts[i]))
	}
	c.JSON(http.StatusOK, views)
}

// Disconnect clears an account's credentials and marks it disconnected.
//
// @Summary  Disconnect a platform account
// @Tags     accounts
// @Param    id path string true "Account ID"
// @Success  200 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /api/accounts/{id}/disconnect [post]
func (h *AccountHandler) Disconnect(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	err := h.accounts.Disconnect(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disconnect account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}

// Refresh performs an explicit token refresh for one account.
//
// @Summary  Refresh a platform account token
// @Tags     accounts
// @Param    id path string true "Account ID"
// @Produce  json
// @Success  200 {object} accountView
// @Failure  404 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Router   /api/accounts/{id}/refresh [post]
func (h *AccountHandler) Refresh(c *gin.Context) {
	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	acct, err := h.accounts.RefreshToken(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, services.ErrAccountNotConnected):
			c.JSON(http.StatusConflict, gin.H{"error": "account is not connected"})
		case errors.Is(err, services.ErrReauthRequired):
			c.JSON(http.StatusConflict, gin.H{"error": "re-authorization required"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "token refresh failed"})
		}
		return
	}

	c.JSON(http.StatusOK, toAccountView(acct))
}
