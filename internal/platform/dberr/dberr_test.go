// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpress/scholar/internal/platform/apperr"
	"github.com/openpress/scholar/internal/platform/dberr"
)

/*
TestWrap_Classification verifies that driver errors map to the right API errors.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"no_rows_is_404", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"unique_violation_is_409", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, "CONFLICT", http.StatusConflict},
		{"fk_violation_is_409", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, "CONFLICT", http.StatusConflict},
		{"unknown_is_500", errors.New("connection reset"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_action")
			require.Error(t, wrapped)

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.Code)
			assert.Equal(t, tt.wantStatus, ae.HTTPStatus)
		})
	}
}

/*
TestWrap_Nil verifies that a nil error passes through untouched.
*/
func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

/*
TestWrap_WrappedChain verifies classification through a wrapped error chain.
*/
func TestWrap_WrappedChain(t *testing.T) {
	cause := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	chained := fmt.Errorf("insert ror: %w", cause)

	assert.True(t, dberr.IsUniqueViolation(chained))
	assert.True(t, apperr.IsConflict(dberr.Wrap(chained, "insert_ror")))
}
