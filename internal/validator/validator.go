package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// urlShape is deliberately loose: host-ish text, a dot, a short TLD-ish
// label, then an optional path or query. The scheme is not checked.
var urlShape = regexp.MustCompile(`(?i)[-a-z0-9@:%._+~#=]{1,256}\.[a-z0-9()]{1,6}\b([-a-z0-9()@:%_+.~#?&/=]*)`)

// URLValidator validates URL inputs
type URLValidator struct {
	maxLength int
}

// NewURLValidator creates a validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{maxLength: 2048}
}

// WithMaxLength sets maximum URL length
func (v *URLValidator) WithMaxLength(length int) *URLValidator {
	v.maxLength = length
	return v
}

// Valid reports whether rawURL looks like a URL
func (v *URLValidator) Valid(rawURL string) bool {
	if strings.TrimSpace(rawURL) == "" || len(rawURL) > v.maxLength {
		return false
	}
	for i := 0; i < len(rawURL); i++ {
		if rawURL[i] > 0x7f {
			return false
		}
	}
	return urlShape.MatchString(rawURL)
}

// ============================================================
// REQUEST VALIDATION
// ============================================================

// Validator checks request DTOs against their `validate` tags and reports
// fields by their JSON names.
type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct returns playground.ValidationErrors when s fails its tags
func (v *Validator) Struct(s any) error {
	return v.v.Struct(s)
}

// FirstMessage renders the first failed field of a validation error, or
// ok=false if err is not one.
func FirstMessage(err error) (string, bool) {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", false
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field()), true
	default:
		return fmt.Sprintf("%s is invalid", fe.Field()), true
	}
}
