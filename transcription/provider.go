package transcription

import (
	"context"

	"github.com/kbukum/asrgate/provider"
)

// Mode selects how audio reaches the provider.
type Mode string

const (
	ModeInline Mode = "inline"
	ModeFile   Mode = "file"
)

// Recognizer is the common part of every speech-to-text backend.
type Recognizer interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Mode reports the capability the gateway should use.
	Mode() Mode
}

// InlineRecognizer transcribes audio sent in the request body.
type InlineRecognizer interface {
	Recognizer
	Recognize(ctx context.Context, req InlineRequest) (*Result, error)
}

// FileRecognizer transcribes staged audio through a submit/poll job.
type FileRecognizer interface {
	Recognizer
	// Submit creates a job and returns its id.
	Submit(ctx context.Context, req FileRequest) (string, error)
	// Poll fetches the current job state. Each call is signed afresh.
	Poll(ctx context.Context, jobID string) (*Job, error)
}

// NewManager creates a provider manager that tries recognizers in the given
// priority order and skips unavailable ones.
func NewManager(priority []string) *provider.Manager[Recognizer] {
	return provider.NewManager[Recognizer](&provider.PrioritySelector[Recognizer]{Priority: priority})
}
