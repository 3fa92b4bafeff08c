// ABOUTME: Tests for dialect helpers and the timestamp scanner.
// ABOUTME: Covers placeholder rebinding, time encoding and ID prefix checks.
package storage

import (
	"strings"
	"testing"
	"time"
)

func TestRebind(t *testing.T) {
	pg := &DB{dialect: DialectPostgres}
	lite := &DB{dialect: DialectSQLite}

	query := `SELECT id FROM sets WHERE workout_exercise_id = ? AND set_number > ? LIMIT ?`
	want := `SELECT id FROM sets WHERE workout_exercise_id = $1 AND set_number > $2 LIMIT $3`

	if got := pg.rebind(query); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
	if got := lite.rebind(query); got != query {
		t.Errorf("sqlite rebind changed the query: %q", got)
	}
}

func TestTimeArg(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 30, 45, 123456789, time.FixedZone("CET", 3600))

	lite := &DB{dialect: DialectSQLite}
	if got := lite.timeArg(ts); got != "2024-01-01 11:30:45.123456" {
		t.Errorf("sqlite timeArg = %v", got)
	}

	pg := &DB{dialect: DialectPostgres}
	got, ok := pg.timeArg(ts).(time.Time)
	if !ok {
		t.Fatalf("postgres timeArg should be time.Time, got %T", pg.timeArg(ts))
	}
	if got.Nanosecond() != 123456000 || got.Location() != time.UTC {
		t.Errorf("postgres timeArg = %v", got)
	}

	if lite.nullTimeArg(nil) != nil {
		t.Error("nullTimeArg(nil) should be nil")
	}
}

func TestDBTimeScan(t *testing.T) {
	want := time.Date(2024, 1, 1, 11, 30, 45, 123456000, time.UTC)

	tests := []struct {
		name  string
		src   any
		want  time.Time
		valid bool
	}{
		{"nil", nil, time.Time{}, false},
		{"time", want, want, true},
		{"fixed width text", "2024-01-01 11:30:45.123456", want, true},
		{"bytes", []byte("2024-01-01 11:30:45.123456"), want, true},
		{"rfc3339", "2024-01-01T11:30:45.123456Z", want, true},
		{"current_timestamp", "2024-01-01 11:30:45", want.Truncate(time.Second), true},
		{"date", "2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got dbTime
			if err := got.Scan(tt.src); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if got.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v", got.Valid, tt.valid)
			}
			if !got.Time.Equal(tt.want) {
				t.Errorf("Time = %v, want %v", got.Time, tt.want)
			}
		})
	}

	var bad dbTime
	if err := bad.Scan("yesterday"); err == nil {
		t.Error("expected error for unparseable time")
	}
	if err := bad.Scan(42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestIsIDPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"abcd1234", true},
		{"0f", true},
		{"abcd-12", true},
		{"", false},
		{"xyz", false},
		{"ABCD", false},
		{"abcd1234-abcd-4abc-8abc-abcdefabcdef0", false},
	}

	for _, tt := range tests {
		if got := isIDPrefix(tt.in); got != tt.want {
			t.Errorf("isIDPrefix(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsIDReference(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"face", false},
		{"Dead", false},
		{"abcdef", false},
		{"abcdefab", true},
		{"a1b2", true},
		{"3f2a", true},
		{"ab-c", true},
		{"Squat", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := IsIDReference(tt.ref); got != tt.want {
				t.Errorf("IsIDReference(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestSQLiteDSNAppliesPragmas(t *testing.T) {
	dsn := sqliteDSN("/tmp/gymlog.db")
	for _, want := range []string{"foreign_keys%281%29", "journal_mode%28WAL%29", "busy_timeout%285000%29"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN %q missing %q", dsn, want)
		}
	}
}
