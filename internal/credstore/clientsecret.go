package credstore

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ClientSecret is the OAuth client registration, read from the Google
// client_secrets.json supplied out of band.
type ClientSecret struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
	RedirectURIs []string `json:"redirect_uris"`
}

type clientSecretFile struct {
	Web       *ClientSecret `json:"web"`
	Installed *ClientSecret `json:"installed"`
}

// LoadClientSecret reads a client_secrets.json with either a "web" or an
// "installed" registration.
func LoadClientSecret(path string) (ClientSecret, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientSecret{}, fmt.Errorf("credstore: read client secret %s: %w", path, err)
	}

	var file clientSecretFile
	if err := json.Unmarshal(data, &file); err != nil {
		return ClientSecret{}, fmt.Errorf("credstore: parse client secret %s: %w", path, err)
	}

	var cs *ClientSecret
	switch {
	case file.Web != nil:
		cs = file.Web
	case file.Installed != nil:
		cs = file.Installed
	default:
		return ClientSecret{}, fmt.Errorf("credstore: client secret %s has neither web nor installed key", path)
	}
	if cs.ClientID == "" || cs.ClientSecret == "" {
		return ClientSecret{}, fmt.Errorf("credstore: client secret %s missing client_id/client_secret", path)
	}
	return *cs, nil
}

// OAuthConfig builds the authorization-code flow config for this
// registration.
func (cs ClientSecret) OAuthConfig(redirectURL string, scopes []string) *oauth2.Config {
	endpoint := google.Endpoint
	if cs.AuthURI != "" && cs.TokenURI != "" {
		endpoint = oauth2.Endpoint{AuthURL: cs.AuthURI, TokenURL: cs.TokenURI}
	}
	return &oauth2.Config{
		ClientID:     cs.ClientID,
		ClientSecret: cs.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}
}

// BundleFromToken packages an exchanged token with the client registration
// so the stored bundle is self-contained for later refreshes.
func (cs ClientSecret) BundleFromToken(token *oauth2.Token, scopes []string) Bundle {
	tokenURI := cs.TokenURI
	if tokenURI == "" {
		tokenURI = google.Endpoint.TokenURL
	}
	return Bundle{
		Token:        token.AccessToken,
		RefreshToken: token.RefreshToken,
		ClientID:     cs.ClientID,
		ClientSecret: cs.ClientSecret,
		TokenURI:     tokenURI,
		Scopes:       scopes,
		Expiry:       token.Expiry,
	}
}
