package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBundle() Bundle {
	return Bundle{
		Token:        "ya29.access",
		RefreshToken: "1//refresh",
		ClientID:     "client-id.apps.googleusercontent.com",
		ClientSecret: "client-secret",
		TokenURI:     "https://oauth2.googleapis.com/token",
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.upload"},
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "tokens.json"))
	bundles, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, bundles)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New(path).Load()
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "tokens.json"))
	want := map[string]Bundle{
		"a@example.com": validBundle(),
		"b@example.com": validBundle(),
	}

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Saving what was loaded must not change the file contents.
	require.NoError(t, store.Save(got))
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestPutReplacesSingleAccount(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "tokens.json"))
	require.NoError(t, store.Put("a@example.com", validBundle()))

	updated := validBundle()
	updated.Token = "ya29.rotated"
	require.NoError(t, store.Put("a@example.com", updated))
	require.NoError(t, store.Put("b@example.com", validBundle()))

	bundles, err := store.Load()
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, "ya29.rotated", bundles["a@example.com"].Token)
}

func TestAccountsSorted(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "tokens.json"))
	for _, email := range []string{"z@example.com", "a@example.com", "m@example.com"} {
		require.NoError(t, store.Put(email, validBundle()))
	}

	accounts, err := store.Accounts()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "m@example.com", "z@example.com"}, accounts)
}

func TestBundleValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Bundle)
		ok     bool
	}{
		{"complete", func(b *Bundle) {}, true},
		{"no refresh token still valid", func(b *Bundle) { b.RefreshToken = "" }, true},
		{"missing token", func(b *Bundle) { b.Token = "" }, false},
		{"missing client id", func(b *Bundle) { b.ClientID = "" }, false},
		{"missing client secret", func(b *Bundle) { b.ClientSecret = "" }, false},
		{"missing token uri", func(b *Bundle) { b.TokenURI = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := validBundle()
			tt.mutate(&bundle)
			err := bundle.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidBundle)
			}
		})
	}
}

func TestBundleExpired(t *testing.T) {
	now := time.Now()

	fresh := validBundle()
	fresh.Expiry = now.Add(time.Minute)
	assert.False(t, fresh.Expired(now))

	stale := validBundle()
	stale.Expiry = now.Add(-time.Minute)
	assert.True(t, stale.Expired(now))

	zero := validBundle()
	zero.Expiry = time.Time{}
	assert.True(t, zero.Expired(now))
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	bundle := validBundle()
	bundle.RefreshToken = ""
	bundle.Expiry = time.Now().Add(-time.Hour)

	_, err := bundle.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshRequired)
}
