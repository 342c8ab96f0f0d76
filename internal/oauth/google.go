// Package oauth performs the Google OAuth2 handshake and reduces the result to
// a models.ProviderProfile. Nothing past this package knows about Google.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/config"
	"workspace-identity/internal/models"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var (
	ErrNotConfigured   = errors.New("oauth: google client is not configured")
	ErrEmailUnverified = apperr.New(apperr.Unauthenticated, "google account email is not verified")
	ErrIncompleteInfo  = apperr.New(apperr.Unauthenticated, "google account is missing an email or subject")
	ErrExchangeFailed  = apperr.New(apperr.Unauthenticated, "oauth code exchange failed")
)

// Google exchanges authorization codes for provider profiles.
type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

type Option func(*Google)

// WithEndpoint points the client at another authorization server.
func WithEndpoint(ep oauth2.Endpoint, userInfoURL string) Option {
	return func(g *Google) {
		g.config.Endpoint = ep
		g.userInfoURL = userInfoURL
	}
}

func NewGoogle(cfg config.OAuthConfig, opts ...Option) (*Google, error) {
	if !cfg.GoogleEnabled() {
		return nil, ErrNotConfigured
	}
	g := &Google{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: googleUserInfoURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewState returns a random value for the OAuth2 state parameter.
func NewState() string {
	return rand.Text()
}

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

type userInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Exchange trades an authorization code for the caller's verified identity.
func (g *Google) Exchange(ctx context.Context, code string) (models.ProviderProfile, error) {
	if strings.TrimSpace(code) == "" {
		return models.ProviderProfile{}, ErrExchangeFailed
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return models.ProviderProfile{}, apperr.Wrap(apperr.Unauthenticated, ErrExchangeFailed.Message, err)
	}

	info, err := g.fetchUserInfo(ctx, tok)
	if err != nil {
		return models.ProviderProfile{}, err
	}
	if info.Subject == "" || info.Email == "" {
		return models.ProviderProfile{}, ErrIncompleteInfo
	}
	if !info.EmailVerified {
		return models.ProviderProfile{}, ErrEmailUnverified
	}

	return models.ProviderProfile{
		Email:       info.Email,
		Subject:     info.Subject,
		DisplayName: info.Name,
	}, nil
}

func (g *Google) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (userInfo, error) {
	resp, err := g.config.Client(ctx, tok).Get(g.userInfoURL)
	if err != nil {
		return userInfo{}, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return userInfo{}, fmt.Errorf("userinfo endpoint returned HTTP %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return userInfo{}, fmt.Errorf("decode user info: %w", err)
	}
	return info, nil
}
