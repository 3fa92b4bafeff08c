// ABOUTME: User CRUD operations.
// ABOUTME: Includes identity lookup and first-sign-in provisioning via EnsureUser.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/gymlog/internal/models"
)

const userColumns = `id, clerk_user_id, email, username, first_name, last_name, created_at, updated_at`

// CreateUser stores a new user. Missing ID and timestamps are generated.
func (d *DB) CreateUser(ctx context.Context, u *models.User) error {
	stampCreate(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	query := `
		INSERT INTO users (id, clerk_user_id, email, username, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.exec(ctx, query,
		u.ID.String(),
		u.ClerkUserID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		d.timeArg(u.CreatedAt),
		d.timeArg(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", classify(err))
	}
	return nil
}

// GetUser retrieves a user by ID or ID prefix (without workouts).
func (d *DB) GetUser(ctx context.Context, idOrPrefix string) (*models.User, error) {
	id, err := d.resolveID(ctx, TableUsers, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(d.queryRow(ctx, query, id))
}

// GetUserByClerkID retrieves the user linked to an identity provider ID.
// When uniqueness is not enforced and several users share the ID, the
// oldest one is returned.
func (d *DB) GetUserByClerkID(ctx context.Context, clerkUserID string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE clerk_user_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	u, err := scanUser(d.queryRow(ctx, query, clerkUserID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: clerk user %s", ErrNotFound, clerkUserID)
		}
		return nil, err
	}
	return u, nil
}

// EnsureUser returns the user linked to u.ClerkUserID, creating u if no
// such user exists. Profile fields set on u overwrite the stored ones.
// The boolean reports whether a new row was created.
func (d *DB) EnsureUser(ctx context.Context, u *models.User) (*models.User, bool, error) {
	existing, err := d.GetUserByClerkID(ctx, u.ClerkUserID)
	if errors.Is(err, ErrNotFound) {
		if err := d.CreateUser(ctx, u); err != nil {
			return nil, false, err
		}
		d.log.Debug("provisioned user", "clerk_user_id", u.ClerkUserID, "id", u.ID)
		return u, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	changed := mergeProfile(&existing.Email, u.Email)
	changed = mergeProfile(&existing.Username, u.Username) || changed
	changed = mergeProfile(&existing.FirstName, u.FirstName) || changed
	changed = mergeProfile(&existing.LastName, u.LastName) || changed
	if !changed {
		return existing, false, nil
	}

	if err := d.UpdateUser(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// mergeProfile copies src over dst when src is set and differs.
func mergeProfile(dst **string, src *string) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

// ListUsers returns users, newest first.
func (d *DB) ListUsers(ctx context.Context, limit int) ([]*models.User, error) {
	query, args := limitClause(`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id ASC`, nil, limit)

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser writes the mutable profile columns and advances updated_at.
// created_at is never modified.
func (d *DB) UpdateUser(ctx context.Context, u *models.User) error {
	updatedAt, err := d.nextUpdatedAt(ctx, TableUsers, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	query := `
		UPDATE users
		SET clerk_user_id = ?, email = ?, username = ?, first_name = ?, last_name = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := d.exec(ctx, query,
		u.ClerkUserID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		d.timeArg(updatedAt),
		u.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", classify(err))
	}
	if err := expectOne(result, u.ID); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	u.UpdatedAt = updatedAt
	return nil
}

// DeleteUser removes a user and, through cascading FKs, their workouts,
// workout exercises and sets.
func (d *DB) DeleteUser(ctx context.Context, idOrPrefix string) error {
	if err := d.deleteByID(ctx, TableUsers, idOrPrefix); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// scanUser scans a single row into a User struct.
func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var email, username, firstName, lastName sql.NullString
	var createdAt, updatedAt dbTime

	err := row.Scan(&u.ID, &u.ClerkUserID, &email, &username, &firstName, &lastName, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Email = nullString(email)
	u.Username = nullString(username)
	u.FirstName = nullString(firstName)
	u.LastName = nullString(lastName)
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedOrCreated(updatedAt, createdAt)

	return &u, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func updatedOrCreated(updatedAt, createdAt dbTime) time.Time {
	if updatedAt.Valid {
		return updatedAt.Time
	}
	return createdAt.Time
}
