package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"quotereel/manager-go/internal/utils"
)

// Error is a failed encoder run, carrying the tail of its output.
type Error struct {
	Output string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render: ffmpeg failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Request names the inputs and output of one render.
type Request struct {
	QuoteLines      []string
	Author          string
	AudioPath       string
	BackgroundImage string
	OutputPath      string
}

// Renderer drives the external encoder. One invocation per artifact; the
// encoder's exit status is the render outcome.
type Renderer struct {
	FFmpegPath string
	Style      Style
}

func New(ffmpegPath string, style Style) *Renderer {
	return &Renderer{FFmpegPath: ffmpegPath, Style: style}
}

// Render composes the background image, quote overlay and audio track into
// the output MP4. The filter chain is validated before the encoder runs, so
// malformed text fails here rather than as an opaque encoder error.
func (r *Renderer) Render(ctx context.Context, req Request) error {
	if !utils.FileExists(req.BackgroundImage) {
		return fmt.Errorf("render: background image %s not found", req.BackgroundImage)
	}

	authorLines := AuthorLines(req.Author, 25)
	filter, err := BuildFilterChain(req.QuoteLines, authorLines, r.Style)
	if err != nil {
		return err
	}

	if err := utils.EnsureDir(filepath.Dir(req.OutputPath)); err != nil {
		return err
	}

	args := []string{
		"-y",
		"-loop", "1",
		"-i", req.BackgroundImage,
		"-i", req.AudioPath,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "[a]",
		"-t", fmt.Sprintf("%g", r.Style.Duration),
		"-shortest",
		"-preset", "slow",
		"-crf", "18",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		req.OutputPath,
	}

	utils.Info("render start", "output", req.OutputPath, "lines", len(req.QuoteLines))
	output, err := utils.RunCommand(ctx, r.FFmpegPath, args...)
	if err != nil {
		return &Error{Output: tail(output, 2000), Err: err}
	}
	utils.Info("render done", "output", req.OutputPath)
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
