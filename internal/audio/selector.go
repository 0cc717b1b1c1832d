// Package audio picks background tracks from a local directory of pre-staged
// songs.
package audio

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"quotereel/manager-go/internal/utils"
)

// ErrNoAudio means the music folder is missing or holds no usable tracks.
// The pipeline treats this as a per-account skip, not a failure.
var ErrNoAudio = errors.New("audio: no tracks available")

var audioExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".aac": true,
	".m4a": true,
}

// SelectTrack returns one random audio file from dir.
func SelectTrack(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		utils.Warn("music folder unreadable", "dir", dir, "err", err)
		return "", ErrNoAudio
	}

	var tracks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			tracks = append(tracks, filepath.Join(dir, entry.Name()))
		}
	}
	if len(tracks) == 0 {
		return "", ErrNoAudio
	}
	return tracks[rand.Intn(len(tracks))], nil
}
