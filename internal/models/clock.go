// ABOUTME: Timestamp helpers shared by models and storage.
// ABOUTME: Timestamps are UTC at microsecond precision to match timestamptz.
package models

import "time"

// Now returns the current time in UTC truncated to microseconds.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NextUpdatedAt returns the updated_at value for a row last stamped at prev.
// The result is strictly after prev even when the wall clock has not moved
// or has stepped backwards.
func NextUpdatedAt(prev time.Time) time.Time {
	now := Now()
	if !now.After(prev) {
		return prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}
