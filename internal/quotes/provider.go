package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"quotereel/manager-go/internal/utils"
)

// Fallback quote returned whenever the remote API cannot produce one. The
// pipeline must never stall on quote retrieval.
const (
	FallbackText   = "Zindagi ke kuch\nraaste akelay hote hai."
	FallbackAuthor = "Unknown"
)

// defaultTopics stands in when the remote tag list is unavailable.
var defaultTopics = []string{
	"motivational",
	"inspirational",
	"wisdom",
	"success",
	"life",
	"happiness",
}

// Quote is a single fetched quote. Ephemeral; produced once per pipeline run.
type Quote struct {
	Text   string
	Author string
}

// Provider fetches quotes from a quotable-style HTTP API.
type Provider struct {
	baseURL string
	client  *http.Client
	rng     *rand.Rand
}

func NewProvider(baseURL string, timeout time.Duration) *Provider {
	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchTags returns the remote topic tag names. Any failure is non-fatal and
// yields an empty slice.
func (p *Provider) FetchTags(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/tags", nil)
	if err != nil {
		return nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		utils.Warn("quote tags fetch failed", "err", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		utils.Warn("quote tags fetch non-200", "status", resp.StatusCode)
		return nil
	}

	var decoded []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		utils.Warn("quote tags decode failed", "err", err)
		return nil
	}

	tags := make([]string, 0, len(decoded))
	for _, tag := range decoded {
		if tag.Name != "" {
			tags = append(tags, tag.Name)
		}
	}
	return tags
}

// FetchQuote picks a random tag from the supplied set (or the built-in topic
// list when empty), asks for up to 3 candidates with that tag and returns one
// at random. Every failure path falls back to the fixed quote; the caller
// never sees an error.
func (p *Provider) FetchQuote(ctx context.Context, tags []string) Quote {
	if len(tags) == 0 {
		tags = defaultTopics
	}
	tag := tags[p.rng.Intn(len(tags))]

	candidates, err := p.fetchCandidates(ctx, tag)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			utils.Warn("quote fetch failed; using fallback", "tag", tag, "err", err)
		} else {
			utils.Warn("quote fetch returned nothing; using fallback", "tag", tag)
		}
		return Quote{Text: FallbackText, Author: FallbackAuthor}
	}

	picked := candidates[p.rng.Intn(len(candidates))]
	utils.Debug("quote fetched", "tag", tag, "author", picked.Author)
	return picked
}

func (p *Provider) fetchCandidates(ctx context.Context, tag string) ([]Quote, error) {
	endpoint := fmt.Sprintf("%s/quotes/random?tags=%s&limit=3", p.baseURL, url.QueryEscape(tag))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote api status %d", resp.StatusCode)
	}

	var decoded []struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(decoded))
	for _, item := range decoded {
		if item.Content == "" {
			continue
		}
		author := item.Author
		if author == "" {
			author = FallbackAuthor
		}
		quotes = append(quotes, Quote{Text: item.Content, Author: author})
	}
	return quotes, nil
}
