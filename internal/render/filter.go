package render

import (
	"fmt"
	"strings"
)

// Text starts fully transparent and ramps in one second after the video
// begins, so the pan/zoom settles before the quote appears.
const textRevealDelay = 1.0

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`,`, `\,`,
)

// Escape neutralizes the characters with syntactic meaning in the ffmpeg
// filter grammar (backslash, single quote, colon, comma) so quote and author
// text can be interpolated into a drawtext directive.
func Escape(text string) string {
	return escaper.Replace(text)
}

// checkDirectiveText rejects text that would corrupt the filter chain even
// after escaping. Construction fails here instead of surfacing as an opaque
// encoder error.
func checkDirectiveText(text string) error {
	if strings.ContainsAny(text, "\n\r") {
		return fmt.Errorf("render: text %q contains a line break", text)
	}
	return nil
}

// BuildFilterChain assembles the full -filter_complex expression for one
// artifact: pan/zoom over the background, one drawtext per wrapped quote
// line, centered author lines underneath, a final video fade-out and the
// audio fade envelope. Deterministic for a given (lines, author, style).
func BuildFilterChain(lines []string, authorLines []string, style Style) (string, error) {
	if err := style.Validate(); err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("render: no quote lines")
	}

	var directives []string

	// Slight over-scale then zoompan gives the slow push-in effect.
	directives = append(directives,
		fmt.Sprintf("[0:v]scale=%d:%d,scale=iw*1.1:ih*1.1", style.Width, style.Height),
		fmt.Sprintf(`zoompan=z='if(gte(pzoom\,1.0)\,1.0\,pzoom+0.02)':s=%dx%d:d=%d:fps=25`,
			style.Width, style.Height, int(style.Duration*25)),
	)

	alpha := fadeInAlpha(style.FadeIn)

	y := style.TextY
	for _, line := range lines {
		if err := checkDirectiveText(line); err != nil {
			return "", err
		}
		directives = append(directives, fmt.Sprintf(
			"drawtext=fontfile='%s':text='%s':fontcolor=%s:fontsize=%d:x=w*%.3f:y=h*%.3f:alpha='%s'",
			Escape(style.FontFile), Escape(line), style.FontColor, style.FontSize, style.TextX, y, alpha,
		))
		y += style.LineSpacing
	}

	// Author goes centered below the last quote line with one line of air.
	y += style.LineSpacing
	for _, line := range authorLines {
		if err := checkDirectiveText(line); err != nil {
			return "", err
		}
		directives = append(directives, fmt.Sprintf(
			"drawtext=fontfile='%s':text='%s':fontcolor=%s:fontsize=%d:x=w*0.5-text_w/2:y=h*%.3f:alpha='%s'",
			Escape(style.FontFile), Escape(line), style.FontColor, style.AuthorFontSize, y, alpha,
		))
		y += style.LineSpacing
	}

	directives = append(directives, fmt.Sprintf("fade=t=out:st=%g:d=%g[v]", style.FadeOutStart, style.FadeOut))

	video := strings.Join(directives, ",")
	audio := fmt.Sprintf(
		"[1:a]afade=t=in:ss=0:d=2,afade=t=out:st=%g:d=2,volume=0.5[a]",
		style.FadeOutStart,
	)
	return video + ";" + audio, nil
}

// AuthorLines formats and wraps the author attribution ("~ Name") to the
// given width, splitting only at spaces unless a single token is too long.
func AuthorLines(author string, width int) []string {
	text := "~ " + strings.TrimSpace(author)
	var lines []string
	for len(text) > width {
		split := strings.LastIndex(text[:width], " ")
		if split <= 0 {
			split = width
		}
		lines = append(lines, strings.TrimSpace(text[:split]))
		text = strings.TrimSpace(text[split:])
	}
	lines = append(lines, text)
	return lines
}

func fadeInAlpha(fadeIn float64) string {
	if fadeIn <= 0 {
		return "1"
	}
	start := textRevealDelay
	end := start + fadeIn
	return fmt.Sprintf(`if(lt(t\,%g)\,0\,if(lt(t\,%g)\,(t-%g)/%g\,1))`, start, end, start, fadeIn)
}
