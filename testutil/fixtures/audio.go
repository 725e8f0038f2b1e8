package fixtures

import "bytes"

// WAV returns a RIFF/WAVE header followed by n filler bytes.
func WAV(n int) []byte {
	return withHeader([]byte("RIFF\x24\x08\x00\x00WAVEfmt "), n)
}

// MP3 returns an ID3v2 header followed by n filler bytes.
func MP3(n int) []byte {
	return withHeader([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), n)
}

// WebM returns an EBML header, as produced by browser MediaRecorder.
func WebM(n int) []byte {
	return withHeader([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81, 0x01}, n)
}

// Unknown returns n bytes that match no audio signature.
func Unknown(n int) []byte {
	return bytes.Repeat([]byte{0x00}, max(n, 4))
}

// Sized returns a WAV clip of exactly size bytes (at least the header).
func Sized(size int) []byte {
	b := WAV(0)
	if size > len(b) {
		b = append(b, make([]byte, size-len(b))...)
	}
	return b
}

func withHeader(h []byte, n int) []byte {
	out := make([]byte, 0, len(h)+n)
	out = append(out, h...)
	return append(out, bytes.Repeat([]byte{0x55}, n)...)
}
