// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpress/scholar/internal/platform/apperr"
	"github.com/openpress/scholar/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "University of Helsinki", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_AllowedLocales checks the disallowed-locale guard on
multilingual fields.
*/
func TestValidator_AllowedLocales(t *testing.T) {
	allowed := []string{"en", "fr"}

	tests := []struct {
		name      string
		value     map[string]string
		errorsLen int
	}{
		{"allowed_locale", map[string]string{"en": "x"}, 0},
		{"both_allowed", map[string]string{"en": "x", "fr": "y"}, 0},
		{"disallowed_locale", map[string]string{"de": "x"}, 1},
		{"mixed", map[string]string{"en": "x", "de": "y", "pt": "z"}, 2},
		{"empty_map", map[string]string{}, 0},
		{"nil_map", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.AllowedLocales("name", tt.value, allowed)
			assert.Len(t, v.Errors(), tt.errorsLen)
		})
	}
}

/*
TestValidator_RequiredPrimary verifies that multilingual required fields must
carry a value in the primary locale.
*/
func TestValidator_RequiredPrimary(t *testing.T) {
	tests := []struct {
		name     string
		value    map[string]string
		hasError bool
	}{
		{"primary_present", map[string]string{"en": "Title"}, false},
		{"only_secondary", map[string]string{"fr": "Titre"}, true},
		{"primary_blank", map[string]string{"en": "  "}, true},
		{"nil_map", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.RequiredPrimary("title", tt.value, "en")
			assert.Equal(t, tt.hasError, v.HasErrors())
		})
	}
}

/*
TestValidator_ROR checks the canonical ROR URI rule.
*/
func TestValidator_ROR(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"canonical", "https://ror.org/05f0yaq80", true},
		{"bare_id", "05f0yaq80", false},
		{"http_scheme", "http://ror.org/05f0yaq80", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.ROR("ror", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestIsWellFormedLocale exercises BCP-47 parsing of locale codes.
*/
func TestIsWellFormedLocale(t *testing.T) {
	assert.True(t, validate.IsWellFormedLocale("en"))
	assert.True(t, validate.IsWellFormedLocale("fr-CA"))
	assert.True(t, validate.IsWellFormedLocale("pt-BR"))
	assert.False(t, validate.IsWellFormedLocale(""))
	assert.False(t, validate.IsWellFormedLocale("not a locale"))
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("raw_citation", "Smith, J. (2024).").
		MaxLen("raw_citation", "Smith, J. (2024).", 100).
		Positive("publication_id", 12).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").                                       // Fails
		Positive("author_id", 0).                                   // Fails
		AllowedLocales("name", map[string]string{"de": "x"}, nil).  // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}
