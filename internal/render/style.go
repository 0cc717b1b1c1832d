// Package render produces the short vertical quote videos by building an
// ffmpeg filter chain and invoking the encoder once per artifact.
package render

import (
	"errors"
	"fmt"
)

// Style carries every knob that shapes the rendered video. The zero value is
// not usable; start from DefaultStyle.
type Style struct {
	FontFile       string
	FontColor      string
	FontSize       int
	AuthorFontSize int

	Width  int
	Height int

	// Timing, in seconds. Invariants checked by Validate:
	// FadeIn <= Duration and FadeOutStart+FadeOut <= Duration.
	Duration     float64
	FadeIn       float64
	FadeOutStart float64
	FadeOut      float64

	// Text placement as fractions of the canvas.
	TextX       float64
	TextY       float64
	LineSpacing float64
}

func DefaultStyle(fontFile string) Style {
	return Style{
		FontFile:       fontFile,
		FontColor:      "white",
		FontSize:       65,
		AuthorFontSize: 50,
		Width:          1080,
		Height:         1920,
		Duration:       7,
		FadeIn:         1,
		FadeOutStart:   6,
		FadeOut:        1,
		TextX:          0.10,
		TextY:          0.12,
		LineSpacing:    0.065,
	}
}

func (s Style) Validate() error {
	if s.FontFile == "" {
		return errors.New("render: style missing font file")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("render: invalid canvas %dx%d", s.Width, s.Height)
	}
	if s.FontSize <= 0 || s.AuthorFontSize <= 0 {
		return errors.New("render: font sizes must be positive")
	}
	if s.Duration <= 0 {
		return errors.New("render: duration must be positive")
	}
	if s.FadeIn > s.Duration {
		return fmt.Errorf("render: fade-in %.2fs exceeds duration %.2fs", s.FadeIn, s.Duration)
	}
	if s.FadeOutStart+s.FadeOut > s.Duration {
		return fmt.Errorf("render: fade-out %.2fs+%.2fs exceeds duration %.2fs", s.FadeOutStart, s.FadeOut, s.Duration)
	}
	return nil
}
