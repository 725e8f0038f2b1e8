package validation

import (
	"slices"
	"strings"

	"github.com/kbukum/asrgate/errors"
)

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates checks that struct tags cannot express, such as
// fields that must be set together. Methods chain:
//
//	return validation.New().
//	    Custom(a != b, "status_failed", "must differ from status_succeeded").
//	    RequiredTogether(map[string]string{"secret_id": id, "secret_key": key}).
//	    Err()
type Validator struct {
	failed []FieldError
}

func New() *Validator { return &Validator{} }

// Custom records message against field unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.failed = append(v.failed, FieldError{Field: field, Message: message})
	}
	return v
}

// Required fails a blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(strings.TrimSpace(value) != "", field, "is required")
}

// RequiredTogether fails the blank members of a group that is only
// partially set, as with a key pair.
func (v *Validator) RequiredTogether(fields map[string]string) *Validator {
	var names, blank []string
	for name, value := range fields {
		names = append(names, name)
		if strings.TrimSpace(value) == "" {
			blank = append(blank, name)
		}
	}
	if len(blank) == 0 || len(blank) == len(fields) {
		return v
	}
	slices.Sort(names)
	slices.Sort(blank)
	msg := "is required when " + strings.Join(names, ", ") + " are configured"
	for _, name := range blank {
		v.Custom(false, name, msg)
	}
	return v
}

// Errors lists the failed checks in the order they ran.
func (v *Validator) Errors() []FieldError { return v.failed }

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.failed) > 0 }

// Err is an INVALID_INPUT AppError listing every failure, or a nil error.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return toAppError(v.failed)
}

func toAppError(failed []FieldError) *errors.AppError {
	parts := make([]string, len(failed))
	for i, f := range failed {
		parts[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", failed)
}
