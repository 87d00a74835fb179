// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively in the service layer — never in handlers or
// storage. It ensures that business logic only operates on semantically valid data.
//
// Locale-scoped fields (maps of locale code to string) get dedicated rules:
// values keyed by a locale outside the allowed set are rejected, and required
// multilingual fields must carry a value for the primary locale.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/openpress/scholar/internal/platform/apperr"
)

var (
	// rorRegex matches a canonical ROR identifier URI (https://ror.org/ + 9 chars).
	rorRegex = regexp.MustCompile(`^https://ror\.org/0[a-z0-9]{8}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// Positive fails if the value is not strictly greater than zero.
func (v *Validator) Positive(field string, value int64) *Validator {
	if value <= 0 {
		v.add(field, "Must be a positive identifier")
	}
	return v
}

// ROR fails if the value is not a canonical ROR identifier URI.
func (v *Validator) ROR(field, value string) *Validator {
	if !rorRegex.MatchString(value) {
		v.add(field, "Must be a canonical ROR URI (https://ror.org/...)")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Locale fails if the value is not a well-formed BCP-47 language tag.
func (v *Validator) Locale(field, value string) *Validator {
	if !IsWellFormedLocale(value) {
		v.add(field, fmt.Sprintf("%q is not a well-formed locale code", value))
	}
	return v
}

// AllowedLocales fails for every key in the multilingual value that is not a
// member of the allowed locale set.
//
// # Example
//
//	v.AllowedLocales("name", map[string]string{"de": "x"}, []string{"en", "fr"})
//	// fails: locale "de" is not allowed
func (v *Validator) AllowedLocales(field string, value map[string]string, allowed []string) *Validator {
	for locale := range value {
		found := false
		for _, a := range allowed {
			if locale == a {
				found = true
				break
			}
		}
		if !found {
			v.add(field, fmt.Sprintf("Locale %q is not supported in this context", locale))
		}
	}
	return v
}

// RequiredPrimary fails unless the multilingual value carries a non-empty
// entry for the primary locale.
func (v *Validator) RequiredPrimary(field string, value map[string]string, primaryLocale string) *Validator {
	if strings.TrimSpace(value[primaryLocale]) == "" {
		v.add(field, fmt.Sprintf("This field is required in the primary locale (%s)", primaryLocale))
	}
	return v
}

// MaxLenPerLocale applies a character bound to every locale entry of a
// multilingual value.
func (v *Validator) MaxLenPerLocale(field string, value map[string]string, max int) *Validator {
	for locale, s := range value {
		if utf8.RuneCountInString(s) > max {
			v.add(field, fmt.Sprintf("Maximum %d characters (locale %s)", max, locale))
		}
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("seq", seq < 1, "Must be 1 or greater")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// Errors returns the collected field errors as data. Services expose this to
// callers who decide the transport-level outcome; an empty slice means the
// input passed every rule.
func (v *Validator) Errors() []apperr.FieldError {
	return v.errs
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}

// IsWellFormedLocale reports whether the code parses as a BCP-47 language tag.
// Settings tables store locale codes verbatim, so length is also bounded.
func IsWellFormedLocale(code string) bool {
	if code == "" || len(code) > 28 {
		return false
	}
	_, err := language.Parse(code)
	return err == nil
}
