// Package audio classifies raw recorded clips by their leading bytes.
//
// Classify never fails: anything it cannot recognise, including clips shorter
// than four bytes, is reported as DefaultFormat (ogg-opus), which is what
// browser recorders emit most of the time. Content-Type headers supplied by
// callers are kept on the Blob as a hint for logging only.
package audio
