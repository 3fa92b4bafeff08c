// ABOUTME: SQL dialect differences between SQLite and Postgres.
// ABOUTME: Placeholder rebinding, time encoding and the timestamp scanner.
package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// sqliteTimeLayout is UTC with a space separator so stored timestamps sort
// lexically against CURRENT_TIMESTAMP defaults ("YYYY-MM-DD HH:MM:SS").
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

// rebind rewrites ? placeholders to $N for Postgres.
// Queries must not contain literal question marks.
func (d *DB) rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// timeArg encodes a timestamp for the current dialect.
func (d *DB) timeArg(t time.Time) any {
	t = t.UTC().Truncate(time.Microsecond)
	if d.dialect == DialectSQLite {
		return t.Format(sqliteTimeLayout)
	}
	return t
}

// nullTimeArg encodes an optional timestamp.
func (d *DB) nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.timeArg(*t)
}

// dateArg encodes a calendar date. Both dialects accept YYYY-MM-DD text.
func (d *DB) dateArg(t time.Time) any {
	return t.Format("2006-01-02")
}

// idText returns the expression used to match ID prefixes.
func (d *DB) idText(column string) string {
	if d.dialect == DialectPostgres {
		return column + "::text"
	}
	return column
}

// caseFold returns a case-insensitive comparison of column against one placeholder.
func (d *DB) caseFold(column string) string {
	return "LOWER(" + column + ") = LOWER(?)"
}

// dbTime scans timestamps and dates from either driver.
// modernc.org/sqlite may hand back text or time.Time depending on the
// declared column type; lib/pq returns time.Time.
type dbTime struct {
	Time  time.Time
	Valid bool
}

var dbTimeLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("scan time: unsupported type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range dbTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("scan time: unrecognized format %q", s)
}

// ptr returns a pointer to the scanned time, or nil if NULL.
func (t dbTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
