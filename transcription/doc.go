// Package transcription defines the recognizer contracts, the job model and
// the helpers shared by speech-to-text backends.
//
// Backends implement one or both capabilities:
//
//   - InlineRecognizer: audio bytes travel in the request body.
//   - FileRecognizer: audio is staged at a URL, a job is submitted and
//     polled until it reaches a terminal state.
//
// # Backends
//
//   - transcription/tencent: Tencent Cloud ASR (inline and file mode)
//   - transcription/whisper: faster-whisper HTTP sidecar (inline)
//
// # Usage
//
//	mgr := transcription.NewManager([]string{"tencent", "whisper"})
//	mgr.Add(tencentClient)
//	rec, err := mgr.Get(ctx)
package transcription
