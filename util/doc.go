// Package util holds small helpers for config cleanup, size parsing and
// random key suffixes.
package util
