package pipeline

import "fmt"

// State is the terminal state of one account's run.
type State string

const (
	StateUploaded           State = "UPLOADED"
	StateUploadFailed       State = "UPLOAD_FAILED"
	StateRenderFailed       State = "RENDER_FAILED"
	StateNoAudio            State = "NO_AUDIO"
	StateTokenRefreshFailed State = "TOKEN_REFRESH_FAILED"
	StateCredentialInvalid  State = "CREDENTIAL_INVALID"
	StateFailed             State = "FAILED"
)

// Outcome is one account's result: the terminal state plus either the video
// URL or an error description.
type Outcome struct {
	State  State
	Detail string
}

func (o Outcome) String() string {
	if o.Detail == "" {
		return string(o.State)
	}
	return fmt.Sprintf("%s: %s", o.State, o.Detail)
}

// Success reports whether the account's video was published.
func (o Outcome) Success() bool { return o.State == StateUploaded }
