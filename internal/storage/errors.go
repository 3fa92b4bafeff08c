// ABOUTME: Sentinel errors returned by the storage layer.
// ABOUTME: Driver constraint errors from SQLite and Postgres are mapped onto them.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when no row matches an ID or prefix.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousPrefix is returned when an ID prefix matches several rows.
	ErrAmbiguousPrefix = errors.New("ambiguous prefix")
	// ErrForeignKey is returned when a row references a parent that does not exist.
	ErrForeignKey = errors.New("referenced row does not exist")
	// ErrDuplicateIdentity is returned when unique identity is enforced and
	// another user already carries the clerk_user_id.
	ErrDuplicateIdentity = errors.New("duplicate clerk user id")
	// ErrAlreadyExists is returned when a row with the same primary key exists.
	ErrAlreadyExists = errors.New("already exists")
)

// pq error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html.
const (
	pqForeignKeyViolation pq.ErrorCode = "23503"
	pqUniqueViolation     pq.ErrorCode = "23505"
)

// classify maps driver constraint errors onto sentinel errors, keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			if strings.Contains(sqliteErr.Error(), "clerk_user_id") {
				return fmt.Errorf("%w: %w", ErrDuplicateIdentity, err)
			}
			return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		case pqUniqueViolation:
			if pqErr.Constraint == IdentityIndexName {
				return fmt.Errorf("%w: %w", ErrDuplicateIdentity, err)
			}
			return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		}
	}

	return err
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
