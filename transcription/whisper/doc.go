// Package whisper implements an inline recognizer backed by a
// faster-whisper HTTP sidecar exposing POST /transcribe and GET /health.
package whisper
