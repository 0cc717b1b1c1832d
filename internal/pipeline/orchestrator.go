// Package pipeline runs the render-and-publish sequence for every stored
// account: refresh credentials, fetch a quote, pick a track, render the
// video, upload it. Accounts are processed strictly one at a time and each
// account's failure is isolated to its own outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"quotereel/manager-go/internal/audio"
	"quotereel/manager-go/internal/config"
	"quotereel/manager-go/internal/credstore"
	"quotereel/manager-go/internal/history"
	"quotereel/manager-go/internal/quotes"
	"quotereel/manager-go/internal/render"
	"quotereel/manager-go/internal/upload"
	"quotereel/manager-go/internal/utils"
)

// QuoteSource yields the quote for one run. The production implementation is
// quotes.Provider; it never fails, only falls back.
type QuoteSource interface {
	FetchTags(ctx context.Context) []string
	FetchQuote(ctx context.Context, tags []string) quotes.Quote
}

// Renderer produces the video artifact for one account.
type Renderer interface {
	Render(ctx context.Context, req render.Request) error
}

// Uploader publishes one file and returns the remote video ID.
type Uploader interface {
	Upload(ctx context.Context, filePath string, meta upload.Metadata) (string, error)
}

// UploaderFactory builds an uploader bound to one account's credentials.
type UploaderFactory func(ctx context.Context, bundle credstore.Bundle) (Uploader, error)

// Orchestrator drives the full pipeline. The interface fields are exported
// so tests can substitute fakes; New wires the production implementations.
type Orchestrator struct {
	Quotes      QuoteSource
	SelectTrack func(dir string) (string, error)
	Renderer    Renderer
	NewUploader UploaderFactory
	History     *history.Store

	cfg   config.Config
	store *credstore.Store
	rng   *rand.Rand
}

func New(cfg config.Config, store *credstore.Store) *Orchestrator {
	return &Orchestrator{
		Quotes:      quotes.NewProvider(cfg.QuoteAPIBaseURL, time.Duration(cfg.QuoteTimeoutSeconds)*time.Second),
		SelectTrack: audio.SelectTrack,
		Renderer:    render.New(cfg.FFmpegPath, styleFromConfig(cfg)),
		NewUploader: func(ctx context.Context, bundle credstore.Bundle) (Uploader, error) {
			return upload.New(ctx, bundle.HTTPClient(ctx))
		},
		cfg:   cfg,
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func styleFromConfig(cfg config.Config) render.Style {
	style := render.DefaultStyle(cfg.FontFile)
	style.FontColor = cfg.FontColor
	style.FontSize = cfg.FontSize
	style.AuthorFontSize = cfg.AuthorFontSize
	style.Duration = cfg.DurationSeconds
	style.FadeIn = cfg.FadeInSeconds
	style.FadeOutStart = cfg.FadeOutStart
	style.FadeOut = cfg.FadeOutSeconds
	return style
}

// Run processes every stored account in order and returns a complete outcome
// map. Only failures shared across all accounts (an unreadable credential
// store) abort the run.
func (o *Orchestrator) Run(ctx context.Context) (map[string]Outcome, error) {
	bundles, err := o.store.Load()
	if err != nil {
		return nil, fmt.Errorf("pipeline: load credentials: %w", err)
	}
	if len(bundles) == 0 {
		utils.Warn("pipeline run with no stored accounts")
		return map[string]Outcome{}, nil
	}

	emails := make([]string, 0, len(bundles))
	for email := range bundles {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	results := make(map[string]Outcome, len(emails))
	for _, email := range emails {
		outcome := o.runAccount(ctx, email, bundles[email])
		results[email] = outcome
		utils.Info("account finished", "account", email, "state", outcome.State)
	}
	return results, nil
}

// RunOne processes a single stored account.
func (o *Orchestrator) RunOne(ctx context.Context, email string) (Outcome, error) {
	bundles, err := o.store.Load()
	if err != nil {
		return Outcome{}, fmt.Errorf("pipeline: load credentials: %w", err)
	}
	bundle, ok := bundles[email]
	if !ok {
		return Outcome{}, fmt.Errorf("pipeline: no credentials stored for %s", email)
	}
	return o.runAccount(ctx, email, bundle), nil
}

// runAccount is the per-account state machine. Whatever goes wrong inside,
// including a panic, becomes this account's outcome; the run continues with
// the next account.
func (o *Orchestrator) runAccount(ctx context.Context, email string, bundle credstore.Bundle) (out Outcome) {
	quote := quotes.Quote{}
	videoID := ""
	defer func() {
		o.record(ctx, email, quote, videoID, out)
	}()
	// Registered after the history defer so it runs first and the recovered
	// outcome is what gets recorded.
	defer func() {
		if r := recover(); r != nil {
			utils.Error("account processing panicked", "account", email, "panic", r)
			out = Outcome{State: StateFailed, Detail: fmt.Sprintf("panic: %v", r)}
		}
	}()

	utils.Info("account start", "account", email)

	// Credentials.
	if err := bundle.Validate(); err != nil {
		return Outcome{State: StateCredentialInvalid, Detail: err.Error()}
	}
	if bundle.Expired(time.Now()) {
		refreshed, err := bundle.Refresh(ctx)
		if err != nil {
			return Outcome{State: StateTokenRefreshFailed, Detail: err.Error()}
		}
		bundle = refreshed
		if err := o.store.Put(email, bundle); err != nil {
			utils.Warn("persisting refreshed token failed", "account", email, "err", err)
		}
	}

	// Quote. Never fails; the provider falls back internally.
	tags := o.Quotes.FetchTags(ctx)
	quote = o.Quotes.FetchQuote(ctx, tags)
	lines := quotes.Wrap(quote.Text, o.cfg.WrapWidth)

	// Audio. A missing or empty music folder skips the account.
	track, err := o.SelectTrack(o.cfg.MusicFolder)
	if err != nil {
		if errors.Is(err, audio.ErrNoAudio) {
			return Outcome{State: StateNoAudio, Detail: "no background tracks in " + o.cfg.MusicFolder}
		}
		return Outcome{State: StateNoAudio, Detail: err.Error()}
	}

	// Render.
	outputPath := o.OutputPath(email)
	err = o.Renderer.Render(ctx, render.Request{
		QuoteLines:      lines,
		Author:          quote.Author,
		AudioPath:       track,
		BackgroundImage: o.cfg.BackgroundImage,
		OutputPath:      outputPath,
	})
	if err != nil {
		return Outcome{State: StateRenderFailed, Detail: err.Error()}
	}

	// Upload.
	uploader, err := o.NewUploader(ctx, bundle)
	if err != nil {
		return Outcome{State: StateUploadFailed, Detail: err.Error()}
	}
	meta := BuildMetadata(quote.Text, o.cfg.CategoryID, o.cfg.PrivacyStatus, o.rng)
	videoID, err = uploader.Upload(ctx, outputPath, meta)
	if err != nil {
		return Outcome{State: StateUploadFailed, Detail: err.Error()}
	}
	return Outcome{State: StateUploaded, Detail: "https://youtu.be/" + videoID}
}

// OutputPath is the per-account artifact path: one file per account,
// overwritten on each run.
func (o *Orchestrator) OutputPath(email string) string {
	return filepath.Join(o.cfg.BaseOutputFolder, sanitizeAccount(email)+".mp4")
}

func sanitizeAccount(email string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, email)
	return strings.Trim(mapped, "._-")
}

func (o *Orchestrator) record(ctx context.Context, email string, quote quotes.Quote, videoID string, outcome Outcome) {
	if o.History == nil {
		return
	}
	var remoteID *string
	if videoID != "" {
		remoteID = &videoID
	}
	if _, err := o.History.RecordUpload(ctx, history.Upload{
		Account: email,
		VideoID: remoteID,
		Quote:   quote.Text,
		Author:  quote.Author,
		Outcome: outcome.String(),
	}); err != nil {
		utils.Warn("upload history write failed", "account", email, "err", err)
	}
}
