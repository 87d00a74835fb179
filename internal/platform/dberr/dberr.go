// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openpress/scholar/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Classification
//
//   - pgx.ErrNoRows becomes a 404.
//   - SQLSTATE 23505 (unique violation) becomes a 409 so callers can report a
//     conflict instead of a generic server fault. Uniqueness races (e.g. two
//     concurrent inserts of the same ROR identifier) are not pre-validated by
//     services and must surface distinguishably here.
//   - SQLSTATE 23503 (foreign key violation) becomes a 409 as well: the
//     referenced parent vanished between validation and write.
//   - Everything else is an opaque 500; the cause is retained for logging.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict("A record with the same unique value already exists")
		case pgerrcode.ForeignKeyViolation:
			return apperr.Conflict("The referenced record no longer exists")
		}
	}

	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err originates from a unique constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
