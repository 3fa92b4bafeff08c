// ABOUTME: Shared parsing and formatting helpers for CLI output.
// ABOUTME: Timestamps, dates, short IDs, padding, and set descriptions.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func parseDate(s string) (time.Time, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", s)
	}
	return d, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func describeSet(s *models.Set) string {
	desc := "bodyweight"
	if s.Weight != nil {
		desc = s.Weight.StringFixed(models.WeightScale)
	}
	if s.Reps != nil {
		desc = fmt.Sprintf("%s x %d", desc, *s.Reps)
	}
	if !s.Completed {
		desc += " (missed)"
	}
	return desc
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min", int(d.Round(time.Minute).Minutes()))
}
