package credstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrInvalidBundle means a stored bundle is missing fields required for
	// refresh. The account must go through /auth again.
	ErrInvalidBundle = errors.New("credstore: bundle missing required fields")
	// ErrRefreshRequired means the access token is expired and no refresh
	// token is available.
	ErrRefreshRequired = errors.New("credstore: token expired and no refresh token")
)

// Bundle is one account's OAuth material, in the same on-disk shape the
// tokens file has always used.
type Bundle struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	TokenURI     string    `json:"token_uri"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Validate enforces the all-or-invalid invariant: a bundle either carries
// the token material and client registration needed to use and refresh it,
// or it is treated as absent. A missing refresh token is not a validation
// failure; it surfaces as ErrRefreshRequired once the access token expires.
func (b Bundle) Validate() error {
	if b.Token == "" || b.ClientID == "" || b.ClientSecret == "" || b.TokenURI == "" {
		return ErrInvalidBundle
	}
	return nil
}

// Expired reports whether the access token is past its expiry. A zero expiry
// counts as expired so a bundle without one is refreshed before first use.
func (b Bundle) Expired(now time.Time) bool {
	if b.Expiry.IsZero() {
		return true
	}
	return !now.Before(b.Expiry)
}

func (b Bundle) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     b.ClientID,
		ClientSecret: b.ClientSecret,
		Scopes:       b.Scopes,
		Endpoint:     oauth2.Endpoint{TokenURL: b.TokenURI},
	}
}

// OAuthToken converts the bundle into the token type the upload client wants.
func (b Bundle) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  b.Token,
		RefreshToken: b.RefreshToken,
		Expiry:       b.Expiry,
		TokenType:    "Bearer",
	}
}

// Refresh exchanges the refresh token for a fresh access token and returns
// the updated bundle. The caller is responsible for persisting it.
func (b Bundle) Refresh(ctx context.Context) (Bundle, error) {
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	if b.RefreshToken == "" {
		return Bundle{}, ErrRefreshRequired
	}

	src := b.oauthConfig().TokenSource(ctx, b.OAuthToken())
	token, err := src.Token()
	if err != nil {
		return Bundle{}, fmt.Errorf("credstore: refresh: %w", err)
	}

	refreshed := b
	refreshed.Token = token.AccessToken
	refreshed.Expiry = token.Expiry
	if token.RefreshToken != "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	return refreshed, nil
}

// HTTPClient returns an authenticated client bound to this bundle's current
// access token. The token is used as-is; refresh happens explicitly through
// Refresh so the store stays the single writer of token material.
func (b Bundle) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(b.OAuthToken()))
}
