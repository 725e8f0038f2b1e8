package audio

import (
	"mime"
	"strings"
)

// Blob is one recorded clip as received from the caller. It lives only for
// the duration of a single transcription.
type Blob struct {
	Data []byte
	// MIMEHint is the caller's Content-Type, if any. It is never trusted
	// over Classify.
	MIMEHint string
}

// NewBlob builds a Blob, normalising the Content-Type hint to its media type.
func NewBlob(data []byte, contentType string) Blob {
	return Blob{Data: data, MIMEHint: mediaType(contentType)}
}

// Size returns the number of audio bytes.
func (b Blob) Size() int64 { return int64(len(b.Data)) }

// Empty reports whether the blob carries no bytes.
func (b Blob) Empty() bool { return len(b.Data) == 0 }

// Format classifies the blob's bytes.
func (b Blob) Format() Format { return Classify(b.Data) }

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
