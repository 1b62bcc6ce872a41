// Package repository implements data access over the Postgres store.  This
// file defines error values and helpers reused across the repositories so
// higher layers can distinguish failure scenarios: handlers translate
// sql.ErrNoRows into 404 and unique-violation conflicts into 409, while the
// ingestion pipeline treats a conflicting create as a recoverable
// "already exists" condition rather than a fatal error.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrEmailExists is returned when a user create or update would duplicate
// an existing email address.
var ErrEmailExists = errors.New("email already exists")

// ErrSampleExists is returned when a route create collides with an existing
// sample_id.  During CSV ingestion this usually means a concurrent upload
// created the route first; callers re-fetch instead of failing.
var ErrSampleExists = errors.New("sample_id already exists")

// ErrSpeciesExists is returned when a species create or rename would
// duplicate an existing species name.
var ErrSpeciesExists = errors.New("species name already exists")

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
