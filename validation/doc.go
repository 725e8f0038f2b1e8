// Package validation validates configuration and request structs.
//
// Struct tags go through go-playground/validator with field names taken from
// mapstructure or json tags; a "cos_bucket" tag checks the COS bucket form.
// Cross-field rules use the programmatic Validator:
//
//	v := validation.New()
//	v.RequiredTogether(map[string]string{"secret_id": c.SecretID, "secret_key": c.SecretKey})
//	return v.Err()
package validation
