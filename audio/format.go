package audio

import (
	"fmt"
	"strings"
)

// Format is a recognised audio container or codec name, as understood by the
// remote recognizer.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatOGG     Format = "ogg"
	FormatOGGOpus Format = "ogg-opus"
	FormatSILK    Format = "silk"
	FormatM4A     Format = "m4a"
)

// DefaultFormat is reported for clips that match no known signature.
const DefaultFormat = FormatOGGOpus

type formatInfo struct {
	ext         string
	contentType string
}

var formats = map[Format]formatInfo{
	FormatWAV:     {"wav", "audio/wav"},
	FormatMP3:     {"mp3", "audio/mpeg"},
	FormatFLAC:    {"flac", "audio/flac"},
	FormatOGG:     {"ogg", "audio/ogg"},
	FormatOGGOpus: {"ogg", "audio/ogg; codecs=opus"},
	FormatSILK:    {"silk", "audio/silk"},
	FormatM4A:     {"m4a", "audio/mp4"},
}

// Formats returns every known format in a stable order.
func Formats() []Format {
	return []Format{FormatWAV, FormatMP3, FormatFLAC, FormatOGG, FormatOGGOpus, FormatSILK, FormatM4A}
}

// ParseFormat parses a format name case-insensitively. "opus" and "webm" are
// accepted as aliases of ogg-opus.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "opus", "webm":
		return FormatOGGOpus, nil
	}
	if _, ok := formats[Format(name)]; ok {
		return Format(name), nil
	}
	return "", fmt.Errorf("audio: unknown format %q", s)
}

// String returns the wire name of the format.
func (f Format) String() string { return string(f) }

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	_, ok := formats[f]
	return ok
}

// Extension returns the file extension used when staging the clip, without
// the leading dot. Unknown formats use the default format's extension.
func (f Format) Extension() string {
	if info, ok := formats[f]; ok {
		return info.ext
	}
	return formats[DefaultFormat].ext
}

// ContentType returns the MIME type used when staging the clip.
func (f Format) ContentType() string {
	if info, ok := formats[f]; ok {
		return info.contentType
	}
	return "application/octet-stream"
}
