// ABOUTME: Shared query plumbing: ID prefix resolution, deletes, updated_at stamping.
// ABOUTME: Also runs work inside a transaction by swapping the querier.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.q.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.q.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.q.QueryRowContext(ctx, d.rebind(query), args...)
}

// withTx runs fn against a copy of d bound to a single transaction.
func (d *DB) withTx(ctx context.Context, fn func(tx *DB) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txDB := *d
	txDB.q = tx
	if err := fn(&txDB); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isIDPrefix reports whether s could be the start of a UUID string.
func isIDPrefix(s string) bool {
	if s == "" || len(s) > 36 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r == '-':
		default:
			return false
		}
	}
	return true
}

// IsIDReference reports whether ref should be tried as an ID prefix when it
// could also be a name. Short all-letter hex words such as "face" or "dead"
// are names.
func IsIDReference(ref string) bool {
	ref = strings.ToLower(ref)
	if !isIDPrefix(ref) {
		return false
	}
	return len(ref) >= 8 || strings.ContainsAny(ref, "0123456789-")
}

// resolveID finds the full ID in table from a full UUID or a unique prefix.
func (d *DB) resolveID(ctx context.Context, table, idOrPrefix string) (string, error) {
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		id, err := uuid.Parse(idOrPrefix)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
		}
		return id.String(), nil
	}

	prefix := strings.ToLower(idOrPrefix)
	if !isIDPrefix(prefix) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s LIKE ? LIMIT 2`, table, d.idText("id"))
	rows, err := d.query(ctx, query, prefix+"%")
	if err != nil {
		return "", fmt.Errorf("resolve %s ID: %w", table, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan %s ID: %w", table, err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve %s ID: %w", table, err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("%w %s: matches multiple records", ErrAmbiguousPrefix, idOrPrefix)
	}

	return matches[0], nil
}

// deleteByID removes one row. Dependent rows go with it through ON DELETE CASCADE.
func (d *DB) deleteByID(ctx context.Context, table, idOrPrefix string) error {
	id, err := d.resolveID(ctx, table, idOrPrefix)
	if err != nil {
		return err
	}

	result, err := d.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return classify(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}

	d.log.Debug("deleted row", "table", table, "id", id)
	return nil
}

// nextUpdatedAt reads the stored updated_at of a row and returns a strictly
// later timestamp for the update about to be written.
func (d *DB) nextUpdatedAt(ctx context.Context, table string, id uuid.UUID) (time.Time, error) {
	var updatedAt, createdAt dbTime
	query := fmt.Sprintf("SELECT updated_at, created_at FROM %s WHERE id = ?", table)
	err := d.queryRow(ctx, query, id.String()).Scan(&updatedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s updated_at: %w", table, err)
	}

	prev := createdAt.Time
	if updatedAt.Valid {
		prev = updatedAt.Time
	}
	return models.NextUpdatedAt(prev), nil
}

// expectOne converts a zero-row update into ErrNotFound.
func expectOne(result sql.Result, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// stampCreate fills generated fields a caller left empty.
func stampCreate(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if createdAt.IsZero() {
		*createdAt = models.Now()
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

// CountRows returns the number of rows in each table.
func (d *DB) CountRows(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(Tables))
	for _, table := range Tables {
		var n int
		if err := d.queryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// limitClause appends LIMIT when limit is positive.
func limitClause(query string, args []any, limit int) (string, []any) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return query, args
}
