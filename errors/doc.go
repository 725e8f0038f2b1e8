// Package errors provides unified error handling for the gateway.
//
// Every failure that crosses the HTTP boundary is an *AppError carrying a
// machine code (EMPTY_AUDIO, PAYLOAD_TOO_LARGE, CONFIG_ERROR, REMOTE_REJECTED,
// MALFORMED_RESPONSE, TIMEOUT, ...), a human-readable message and the HTTP
// status it maps to. Messages and details never include secrets or signed URLs.
package errors
