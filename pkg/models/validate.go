package models

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Kinds of FieldError
const (
	KindParse     = "parse"
	KindRequired  = "required"
	KindInvalid   = "invalid"
	KindDuplicate = "duplicate"
	KindConflict  = "conflict"
)

// FieldError is one schema problem found in a document.
type FieldError struct {
	Kind    string
	Field   string
	Message string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Kind, e.Message)
}

// FieldErrors collects every problem found in a document.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

var (
	repoPattern     = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
	spacePattern    = regexp.MustCompile(`^[a-z0-9_-]+$`)
	intervalPattern = regexp.MustCompile(`^[1-9][0-9]*[smhd]$`)
	fromPattern     = regexp.MustCompile(`^now-[1-9][0-9]*[smhd]$`)
	customerPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// ValidSpace reports whether s is a usable Kibana space id.
func ValidSpace(s string) bool {
	return spacePattern.MatchString(s)
}

// ValidCustomerID reports whether id can name a customer directory.
func ValidCustomerID(id string) bool {
	return customerPattern.MatchString(id)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their YAML names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "repo", repoPattern)
	mustRegister(v, "space", spacePattern)
	mustRegister(v, "interval", intervalPattern)
	mustRegister(v, "datemath", fromPattern)

	return v
}

func mustRegister(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// decodeStrict decodes a YAML document rejecting unknown keys. Type errors
// are collected and decoding carries on so the partial value can still be
// validated; syntax errors stop decoding.
func decodeStrict(data []byte, out interface{}) FieldErrors {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(out)
	if err == nil || stderrors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *yaml.TypeError
	if stderrors.As(err, &typeErr) {
		errs := make(FieldErrors, 0, len(typeErr.Errors))
		for _, msg := range typeErr.Errors {
			errs = append(errs, FieldError{Kind: KindParse, Message: msg})
		}
		return errs
	}

	return FieldErrors{{Kind: KindParse, Message: strings.TrimPrefix(err.Error(), "yaml: ")}}
}

// structErrors runs the struct validator and converts its result.
func structErrors(s interface{}) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return FieldErrors{{Kind: KindInvalid, Message: err.Error()}}
	}

	errs := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, FieldError{
			Kind:    kindFor(fe),
			Field:   fieldPath(fe),
			Message: messageFor(fe),
		})
	}
	return errs
}

// fieldPath drops the root struct name: "CustomerConfig.name" -> "name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func kindFor(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return KindRequired
	}
	return KindInvalid
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%q is not a valid URL", fe.Value())
	case "repo":
		return fmt.Sprintf("%q must look like owner/repo", fe.Value())
	case "space":
		return fmt.Sprintf("%q must contain only lowercase letters, digits, '_' and '-'", fe.Value())
	case "interval":
		return fmt.Sprintf("%q must be a duration like 5m", fe.Value())
	case "datemath":
		return fmt.Sprintf("%q must look like now-6m", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// NewValidationError wraps collected field errors for the document at path.
func NewValidationError(path string, errs FieldErrors) *errors.DacError {
	return errors.Newf(errors.ErrValidation, "%s has %d schema error(s)", path, len(errs)).
		WithDetail("path", path).
		WithDetail("errors", errs)
}

// FieldErrorsOf extracts the field errors carried by a validation error.
func FieldErrorsOf(err error) FieldErrors {
	details := errors.GetErrorDetails(err)
	if details == nil {
		return nil
	}
	errs, _ := details["errors"].(FieldErrors)
	return errs
}
