// Package fixtures holds small audio clips with valid leading signatures.
// The bytes after the header are filler; no fixture decodes as real audio.
package fixtures
