package logger

import (
	"net/url"
	"strings"
)

const secretPrefixLen = 6

// MaskSecret keeps a short prefix of a credential identifier so operators can
// tell keys apart without the value being recoverable from logs.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= secretPrefixLen {
		return strings.Repeat("*", len(s))
	}
	return s[:secretPrefixLen] + "***"
}

// RedactURL strips the query string and userinfo from a URL. Presigned object
// URLs carry their signature in the query, so only scheme, host and path are
// safe to log.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	u.User = nil
	redacted := u.RawQuery != ""
	u.RawQuery = ""
	u.Fragment = ""
	if redacted {
		return u.String() + "?[redacted]"
	}
	return u.String()
}
