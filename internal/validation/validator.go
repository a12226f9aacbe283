package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// plausibleEmail accepts local@domain.tld with no whitespace and no extra '@'.
// It is looser than RFC 5322.
var plausibleEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsPlausibleEmail reports whether s has the shape local@domain.tld.
func IsPlausibleEmail(s string) bool {
	return plausibleEmail.MatchString(s)
}

// Validator validates request DTOs using struct tags. Besides the stock rules it
// understands "plainemail".
type Validator struct {
	validate *validator.Validate
}

// FieldErrors maps a JSON field name to the failed rule.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, rule := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", field, rule))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, ", ")
}

// New constructs a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	//nolint:errcheck // registration only fails on an empty tag
	v.RegisterValidation("plainemail", func(fl validator.FieldLevel) bool {
		return IsPlausibleEmail(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates data and returns FieldErrors when any rule fails.
func (v *Validator) Struct(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
