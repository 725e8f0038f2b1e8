package validation

import (
	stderrors "errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/asrgate/errors"
)

// cosBucketPattern is the "<name>-<appid>" bucket format of Tencent COS.
var cosBucketPattern = regexp.MustCompile(`^[a-z0-9]+-\d+$`)

// IsCOSBucket reports whether name has the COS "<name>-<appid>" form.
func IsCOSBucket(name string) bool {
	return cosBucketPattern.MatchString(name)
}

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(tagName)
	_ = v.RegisterValidation("cos_bucket", func(fl validator.FieldLevel) bool {
		return IsCOSBucket(fl.Field().String())
	})
	return v
})

// tagName names fields the way they are configured: mapstructure for config
// structs, json for request bodies.
func tagName(f reflect.StructField) string {
	for _, key := range []string{"mapstructure", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return toSnakeCase(f.Name)
}

// Validate checks s against its `validate` tags, e.g.
// `validate:"required,oneof=inline file"`. Failures come back as one
// INVALID_INPUT AppError naming every field.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Validation("validation failed").WithCause(err)
	}
	failed := make([]FieldError, len(verrs))
	for i, e := range verrs {
		failed[i] = FieldError{Field: fieldPath(e), Message: describe(e)}
	}
	return toAppError(failed)
}

// fieldPath drops the root struct name so nested fields read as
// "tencent.secret_id".
func fieldPath(e validator.FieldError) string {
	if _, rest, ok := strings.Cut(e.Namespace(), "."); ok {
		return rest
	}
	return e.Field()
}

var tagMessages = map[string]string{
	"required":   "is required",
	"min":        "must be at least ",
	"max":        "must be at most ",
	"gt":         "must be greater than ",
	"gte":        "must be at least ",
	"lte":        "must be at most ",
	"oneof":      "must be one of: ",
	"url":        "must be a valid URL",
	"cos_bucket": "must look like <name>-<appid>",
}

func describe(e validator.FieldError) string {
	msg, ok := tagMessages[e.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.HasSuffix(msg, " ") {
		msg += e.Param()
	}
	return msg
}

// toSnakeCase keeps acronyms together: SecretID -> secret_id,
// HTTPServer -> http_server.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
