package signer

import (
	"errors"
	"fmt"

	"github.com/kbukum/asrgate/logger"
)

// ErrMissingCredential is returned when a secret id or key is empty.
var ErrMissingCredential = errors.New("signer: missing secret id or secret key")

// Credential is an API key pair. It is loaded once at startup and shared
// read-only. Formatting a Credential never prints the secret key.
type Credential struct {
	SecretID  string
	SecretKey string
	// Token is the optional session token of temporary credentials.
	Token string
}

// Validate reports ErrMissingCredential when either half is empty.
func (c Credential) Validate() error {
	if c.SecretID == "" || c.SecretKey == "" {
		return ErrMissingCredential
	}
	return nil
}

// IsZero reports whether no part of the credential is set.
func (c Credential) IsZero() bool {
	return c.SecretID == "" && c.SecretKey == "" && c.Token == ""
}

// Redacted returns the truncated secret id, safe for logs.
func (c Credential) Redacted() string {
	return logger.MaskSecret(c.SecretID)
}

// String implements fmt.Stringer.
func (c Credential) String() string {
	return fmt.Sprintf("Credential{SecretID: %s}", c.Redacted())
}

// GoString implements fmt.GoStringer so %#v does not leak the key.
func (c Credential) GoString() string { return c.String() }
