package quotes

import (
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "single short line",
			text:  "hello world",
			width: 25,
			want:  []string{"hello world"},
		},
		{
			name:  "breaks at word boundary",
			text:  "one two three four",
			width: 9,
			want:  []string{"one two", "three", "four"},
		},
		{
			name:  "overlong word stands alone",
			text:  "a supercalifragilistic b",
			width: 10,
			want:  []string{"a", "supercalifragilistic", "b"},
		},
		{
			name:  "collapses whitespace",
			text:  "  spaced\n\nout   words  ",
			width: 25,
			want:  []string{"spaced out words"},
		},
		{
			name:  "empty",
			text:  "   ",
			width: 10,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			if len(got) != len(tt.want) {
				t.Fatalf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWrapWaltDisney(t *testing.T) {
	text := "The best way to get started is to quit talking and begin doing."
	lines := Wrap(text, 20)

	if len(lines) != 4 {
		t.Fatalf("got %d lines %q, want 4", len(lines), lines)
	}
	for i, line := range lines {
		if len(line) > 20 {
			t.Errorf("line %d %q exceeds width 20", i, line)
		}
	}
	// No word may be split: rejoining must give back the original words.
	if rejoined := strings.Join(lines, " "); rejoined != text {
		t.Errorf("rejoined = %q, want %q", rejoined, text)
	}
}

func TestWrapNeverExceedsWidth(t *testing.T) {
	texts := []string{
		"Success is not final, failure is not fatal: it is the courage to continue that counts.",
		"Believe you can and you're halfway there.",
		"It does not matter how slowly you go as long as you do not stop.",
		FallbackText,
	}
	for _, text := range texts {
		for width := 5; width <= 40; width += 5 {
			for i, line := range Wrap(text, width) {
				if len(line) > width && strings.Contains(line, " ") {
					t.Errorf("Wrap(%q, %d) line %d = %q exceeds width with a breakable space", text, width, i, line)
				}
			}
		}
	}
}
