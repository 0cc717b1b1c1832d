package pipeline

import (
	"math/rand"
	"strings"
	"testing"
)

func TestBuildMetadataTitle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	meta := BuildMetadata("The way to get started is to quit talking", "27", "public", rng)

	if !strings.HasPrefix(meta.Title, "The way to get started... #shorts #") {
		t.Errorf("title = %q", meta.Title)
	}
	if got := strings.Count(meta.Title, "#"); got != 4 {
		t.Errorf("title has %d hashtags, want 4 (shorts + 3 tags)", got)
	}
}

func TestBuildMetadataShortQuote(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	meta := BuildMetadata("Just begin", "27", "public", rng)

	if !strings.HasPrefix(meta.Title, "Just begin... #shorts") {
		t.Errorf("title = %q", meta.Title)
	}
}

func TestBuildMetadataDescription(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	quote := "Stay hungry, stay foolish."
	meta := BuildMetadata(quote, "27", "public", rng)

	if !strings.HasPrefix(meta.Description, quote) {
		t.Errorf("description does not open with the quote: %q", meta.Description)
	}
	if !strings.Contains(meta.Description, "Follow us for daily motivation!") {
		t.Error("description missing follow line")
	}
	if got := strings.Count(meta.Description, "#"); got != len(viralTags) {
		t.Errorf("description carries %d hashtags, want %d", got, len(viralTags))
	}
}

func TestBuildMetadataTagsAndListing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	meta := BuildMetadata("Dream big work hard", "27", "public", rng)

	if len(meta.Tags) != 10 {
		t.Fatalf("tags = %d, want 10", len(meta.Tags))
	}
	known := map[string]bool{}
	for _, tag := range viralTags {
		known[tag] = true
	}
	for _, tag := range meta.Tags {
		if !known[tag] {
			t.Errorf("tag %q not in vocabulary", tag)
		}
	}

	if meta.CategoryID != "27" {
		t.Errorf("category = %q, want 27", meta.CategoryID)
	}
	if meta.Privacy != "public" {
		t.Errorf("privacy = %q, want public", meta.Privacy)
	}
}

func TestOutcomeString(t *testing.T) {
	bare := Outcome{State: StateNoAudio}
	if bare.String() != "NO_AUDIO" {
		t.Errorf("String() = %q", bare.String())
	}

	detailed := Outcome{State: StateUploaded, Detail: "https://youtu.be/abc"}
	if detailed.String() != "UPLOADED: https://youtu.be/abc" {
		t.Errorf("String() = %q", detailed.String())
	}
}
