package transcription

import "github.com/kbukum/asrgate/audio"

// JobStatus is the lifecycle state of a remote recognition job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further polling can change the status.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is the last known state of a file-mode recognition job. It is owned by
// a single request and never persisted.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
	// Result is the provider's raw result field, see FlattenResult.
	Result       string `json:"result,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// InlineRequest carries audio bytes in the recognition request itself.
type InlineRequest struct {
	Audio  []byte
	Format audio.Format
	// IdempotencyKey lets the provider deduplicate retried requests.
	IdempotencyKey string
}

// FileRequest points the provider at staged audio.
type FileRequest struct {
	URL    string
	Format audio.Format
}

// Result holds a finished transcript.
type Result struct {
	// Text is the concatenation of all segment texts, in order.
	Text string `json:"text"`
	// Segments contains the transcript pieces, when the provider reports them.
	Segments []Segment `json:"segments,omitempty"`
	// Provider is the name of the recognizer that produced the text.
	Provider string `json:"provider,omitempty"`
	// JobID is set for file-mode results.
	JobID  string       `json:"job_id,omitempty"`
	Format audio.Format `json:"format,omitempty"`
	// Duration is the audio duration in seconds, if known.
	Duration float64 `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// Speaker is the identified speaker label, if available.
	Speaker string `json:"speaker,omitempty"`
}
