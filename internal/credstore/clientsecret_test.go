package credstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func writeSecret(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client_secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadClientSecretWeb(t *testing.T) {
	path := writeSecret(t, `{
		"web": {
			"client_id": "id.apps.googleusercontent.com",
			"client_secret": "secret",
			"auth_uri": "https://accounts.google.com/o/oauth2/auth",
			"token_uri": "https://oauth2.googleapis.com/token",
			"redirect_uris": ["https://quotereel.example.com/auth/callback"]
		}
	}`)

	cs, err := LoadClientSecret(path)
	require.NoError(t, err)
	assert.Equal(t, "id.apps.googleusercontent.com", cs.ClientID)
	assert.Equal(t, "https://oauth2.googleapis.com/token", cs.TokenURI)
}

func TestLoadClientSecretInstalled(t *testing.T) {
	path := writeSecret(t, `{"installed": {"client_id": "id", "client_secret": "secret"}}`)

	cs, err := LoadClientSecret(path)
	require.NoError(t, err)
	assert.Equal(t, "id", cs.ClientID)
}

func TestLoadClientSecretRejectsUnknownShape(t *testing.T) {
	path := writeSecret(t, `{"desktop": {"client_id": "id"}}`)
	_, err := LoadClientSecret(path)
	assert.Error(t, err)
}

func TestLoadClientSecretRejectsMissingFields(t *testing.T) {
	path := writeSecret(t, `{"web": {"client_id": "id"}}`)
	_, err := LoadClientSecret(path)
	assert.Error(t, err)
}

func TestOAuthConfig(t *testing.T) {
	cs := ClientSecret{
		ClientID:     "id",
		ClientSecret: "secret",
		AuthURI:      "https://auth.example.com",
		TokenURI:     "https://token.example.com",
	}
	conf := cs.OAuthConfig("https://quotereel.example.com/auth/callback", []string{"scope-a"})

	assert.Equal(t, "https://quotereel.example.com/auth/callback", conf.RedirectURL)
	assert.Equal(t, "https://auth.example.com", conf.Endpoint.AuthURL)
	assert.Equal(t, "https://token.example.com", conf.Endpoint.TokenURL)
	assert.Equal(t, []string{"scope-a"}, conf.Scopes)
}

func TestBundleFromToken(t *testing.T) {
	cs := ClientSecret{ClientID: "id", ClientSecret: "secret", TokenURI: "https://token.example.com"}
	expiry := time.Now().Add(time.Hour)
	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry}

	bundle := cs.BundleFromToken(token, []string{"scope-a"})
	require.NoError(t, bundle.Validate())
	assert.Equal(t, "access", bundle.Token)
	assert.Equal(t, "refresh", bundle.RefreshToken)
	assert.Equal(t, "https://token.example.com", bundle.TokenURI)
	assert.Equal(t, expiry, bundle.Expiry)
}
