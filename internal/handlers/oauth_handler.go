package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/services"
	"github.com/go-socialhub/socialhub/internal/util"

	"github.com/gin-gonic/gin"
)

// OAuthHandler drives the browser-facing account connect flow.
type OAuthHandler struct {
	accounts *services.AccountService

	// settingsPath is where the browser lands after a callback, with
	// ?connected= or ?error= appended. Raw provider payloads are never
	// exposed there.
	settingsPath string
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(accounts *services.AccountService, settingsPath string) *OAuthHandler {
	return &OAuthHandler{
		accounts:     accounts,
		settingsPath: settingsPath,
	}
}

func (h *OAuthHandler) settingsRedirect(c *gin.Context, query string) {
	c.Redirect(http.StatusTemporaryRedirect, h.settingsPath+"?"+query)
}

// ConnectWithPlatform starts the OAuth connect flow for one platform.
//
// @Summary     Connect a platform account
// @Description Issues a CSRF state and redirects to the platform's authorization page
// @Tags        oauth
// @Param       platform path string true "Platform name"
// @Success     307
// @Failure     400 {object} map[string]string
// @Router      /auth/{platform}/connect [get]
func (h *OAuthHandler) ConnectWithPlatform(c *gin.Context) {
	p := platform.Platform(c.Param("platform"))
	if !p.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform"})
		return
	}

	userID := util.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	redirect := c.Query("redirect")
	if !util.IsRedirectSafe(redirect, "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsafe redirect"})
		return
	}

	authURL, err := h.accounts.BeginConnect(c.Request.Context(), userID, p, redirect)
	if err != nil {
		log.Printf("[OAuth] Failed to start connect for platform=%s: %v", p, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate connect"})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Callback finishes the OAuth connect flow after the provider redirect.
// Every failure leg lands on the settings page with a stable error code;
// provider error payloads are logged, never forwarded.
//
// @Summary     OAuth provider callback
// @Tags        oauth
// @Param       platform path  string true  "Platform name"
// @Param       code     query string false "Authorization code"
// @Param       state    query string false "CSRF state token"
// @Param       error    query string false "Provider error code"
// @Success     307
// @Router      /auth/{platform}/callback [get]
func (h *OAuthHandler) Callback(c *gin.Context) {
	p := platform.Platform(c.Param("platform"))
	if !p.Valid() {
		h.settingsRedirect(c, "error=unsupported_platform")
		return
	}

	// The user denied access or the provider reported a failure.
	if provErr := c.Query("error"); provErr != "" {
		log.Printf("[OAuth] Provider callback error platform=%s: %s", p, provErr)
		h.settingsRedirect(c, "error="+url.QueryEscape(provErr))
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		h.settingsRedirect(c, "error=missing_parameters")
		return
	}

	acct, redirect, err := h.accounts.CompleteConnect(c.Request.Context(), p, code, state)
	if err != nil {
		log.Printf("[OAuth] Connect failed platform=%s: %v", p, err)
		switch {
		case errors.Is(err, oauth.ErrInvalidState):
			h.settingsRedirect(c, "error=invalid_state")
		case errors.Is(err, oauth.ErrExchangeFailed):
			h.settingsRedirect(c, "error=exchange_failed")
		case errors.Is(err, oauth.ErrIdentityFetch):
			h.settingsRedirect(c, "error=identity_fetch_failed")
		default:
			h.settingsRedirect(c, "error=connect_failed")
		}
		return
	}

	log.Printf("[OAuth] Connected platform=%s account=%s", p, acct.ID)

	// Honor the caller's stored return destination when it is a safe
	// relative path; fall back to the settings page otherwise.
	dest := h.settingsPath
	if redirect != "" && util.IsRedirectSafe(redirect, "") {
		dest = redirect
	}
	c.Redirect(http.StatusTemporaryRedirect,
		dest+"?connected="+url.QueryEscape(p.String()))
}
