package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewProvider(server.URL, 2*time.Second)
}

func TestFetchQuoteFallsBackOnServerError(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	quote := provider.FetchQuote(context.Background(), []string{"motivational"})
	if quote.Text != FallbackText {
		t.Errorf("text = %q, want fallback %q", quote.Text, FallbackText)
	}
	if quote.Author != FallbackAuthor {
		t.Errorf("author = %q, want %q", quote.Author, FallbackAuthor)
	}
}

func TestFetchQuoteFallsBackOnEmptyResult(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))

	quote := provider.FetchQuote(context.Background(), nil)
	if quote.Text != FallbackText || quote.Author != FallbackAuthor {
		t.Errorf("got (%q, %q), want fallback pair", quote.Text, quote.Author)
	}
}

func TestFetchQuoteReturnsCandidate(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quotes/random" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("limit = %q, want 3", got)
		}
		if got := r.URL.Query().Get("tags"); got != "wisdom" {
			t.Errorf("tags = %q, want wisdom", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"content":"Stay hungry.","author":"Steve Jobs"}]`))
	}))

	quote := provider.FetchQuote(context.Background(), []string{"wisdom"})
	if quote.Text != "Stay hungry." {
		t.Errorf("text = %q, want %q", quote.Text, "Stay hungry.")
	}
	if quote.Author != "Steve Jobs" {
		t.Errorf("author = %q, want %q", quote.Author, "Steve Jobs")
	}
}

func TestFetchTags(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"wisdom"},{"name":"success"},{"name":""}]`))
	}))

	tags := provider.FetchTags(context.Background())
	if len(tags) != 2 {
		t.Fatalf("tags = %v, want 2 entries", tags)
	}
	if tags[0] != "wisdom" || tags[1] != "success" {
		t.Errorf("tags = %v", tags)
	}
}

func TestFetchTagsEmptyOnFailure(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	if tags := provider.FetchTags(context.Background()); len(tags) != 0 {
		t.Errorf("tags = %v, want empty", tags)
	}
}
