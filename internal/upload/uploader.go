// Package upload submits rendered videos to the YouTube Data API.
package upload

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"quotereel/manager-go/internal/utils"
)

// Scope required to publish videos on the account's behalf.
const Scope = youtube.YoutubeUploadScope

// Error wraps any failure from the upload API (auth, quota, metadata,
// network) for the per-account outcome.
type Error struct {
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("upload: %v", e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Metadata is the video listing. Titles arrive already composed and
// truncated by the caller; nothing is reshaped here.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// Uploader is bound to one authenticated account.
type Uploader struct {
	service *youtube.Service
}

// New builds an uploader over an already-authenticated HTTP client.
func New(ctx context.Context, client *http.Client) (*Uploader, error) {
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, &Error{Err: err}
	}
	return &Uploader{service: service}, nil
}

// Upload submits the file in a single blocking call and returns the remote
// video ID. Resumable-session recovery is whatever the client library does
// internally; nothing is retried here.
func (u *Uploader) Upload(ctx context.Context, filePath string, meta Metadata) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", &Error{Err: fmt.Errorf("open %s: %w", filePath, err)}
	}
	defer file.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: meta.Privacy},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video)
	utils.Info("upload start", "file", filePath, "title", meta.Title)
	response, err := call.Media(file).Context(ctx).Do()
	if err != nil {
		return "", &Error{Err: err}
	}
	utils.Info("upload done", "video_id", response.Id)
	return response.Id, nil
}
