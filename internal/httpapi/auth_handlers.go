package httpapi

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/auth"
	"workspace-identity/internal/models"
	"workspace-identity/internal/oauth"
	"workspace-identity/pkg/logger"
)

const (
	stateCookie       = "oauth_state"
	stateCookieMaxAge = 300
)

var errStateMismatch = apperr.New(apperr.Unauthenticated, "oauth state mismatch")

type devLoginRequest struct {
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	DisplayName string `json:"display_name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type meResponse struct {
	User    models.User         `json:"user"`
	Profile *models.UserProfile `json:"profile,omitempty"`
}

// GoogleLogin redirects the browser to Google's consent page.
func (h Handlers) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		writeError(c, errNotConfigured)
		return
	}
	state := oauth.NewState()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieMaxAge, "/", "", h.SecureCookies, true)
	c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

// GoogleCallback completes the handshake and hands the tokens to the frontend
// in the URL fragment, which browsers never send to servers.
func (h Handlers) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		writeError(c, errNotConfigured)
		return
	}

	state := c.Query("state")
	saved, err := c.Cookie(stateCookie)
	c.SetCookie(stateCookie, "", -1, "/", "", h.SecureCookies, true)
	if err != nil || state == "" || state != saved {
		logger.FromGin(c).Warn("oauth callback state mismatch")
		writeError(c, errStateMismatch)
		return
	}

	profile, err := h.Google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := h.Sessions.LoginOAuth(c.Request.Context(), profile)
	if err != nil {
		writeError(c, err)
		return
	}

	frag := url.Values{}
	frag.Set("access_token", res.AccessToken)
	frag.Set("refresh_token", res.RefreshToken)
	frag.Set("user_id", res.UserID.String())
	c.Redirect(http.StatusFound, h.FrontendURL+"#"+frag.Encode())
}

// DevLogin accepts the provider tuple directly. Only routed in local/dev.
func (h Handlers) DevLogin(c *gin.Context) {
	var req devLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Sessions.LoginOAuth(c.Request.Context(), models.ProviderProfile{
		Email:       req.Email,
		Subject:     req.Subject,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeError(c, apperr.New(apperr.InvalidArgument, "refresh_token is required"))
		return
	}
	res, err := h.Sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Logout revokes the bearer token and an optional refresh token from the body.
// It validates the bearer itself instead of going through the auth gate, so an
// expired token can still log out.
func (h Handlers) Logout(c *gin.Context) {
	tok, err := auth.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, err)
		return
	}
	var req refreshRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if err := h.Sessions.Logout(c.Request.Context(), tok, req.RefreshToken); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) Me(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	u, err := h.Users.GetActiveUser(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := meResponse{User: u}
	if p, err := h.Users.GetProfile(c.Request.Context(), uid, models.GlobalWorkspaceID); err == nil {
		resp.Profile = &p
	} else if !isKind(err, apperr.ProfileNotFound) {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
