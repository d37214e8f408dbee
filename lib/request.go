package lib

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError represents a clean validation error for APIs
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a structured validation error
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ExtractAndValidateBody decodes a JSON body into T, refusing unknown fields,
// and runs the validate tags. Tag failures come back as *ValidationError.
func ExtractAndValidateBody[T any](r *http.Request) (*T, error) {
	defer r.Body.Close()

	var body T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}

	err := validate.Struct(body)
	var ve validator.ValidationErrors
	switch {
	case err == nil:
		return &body, nil
	case errors.As(err, &ve):
		return nil, toValidationError(ve)
	default:
		return nil, err
	}
}

// tagMessages covers the tags used on request bodies; anything else is "is invalid"
var tagMessages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"email":    func(string) string { return "must be a valid email address" },
	"min":      func(p string) string { return "must be at least " + p + " characters" },
	"max":      func(p string) string { return "must be at most " + p + " characters" },
	"gte":      func(p string) string { return "must be greater than or equal to " + p },
	"oneof":    func(p string) string { return "must be one of: " + p },
}

func toValidationError(errs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Errors: make([]FieldError, 0, len(errs))}
	for _, e := range errs {
		message := "is invalid"
		if describe, ok := tagMessages[e.Tag()]; ok {
			message = describe(e.Param())
		}
		out.Errors = append(out.Errors, FieldError{Field: e.Field(), Message: message})
	}
	return out
}
