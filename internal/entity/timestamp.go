package entity

import "github.com/instamunch/instamunch-api/internal/record"

// TimestampLayout is the canonical output form: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders ts in TimestampLayout. A timestamp that persistence
// already returned as text is passed through unchanged, which makes formatting
// idempotent.
func FormatTimestamp(ts record.Timestamp) (string, bool) {
	if t, ok := ts.Time(); ok {
		return t.UTC().Format(TimestampLayout), true
	}
	if s, ok := ts.Literal(); ok {
		return s, true
	}
	return "", false
}

func timestamps(entity, id string, created, updated record.Timestamp) (string, string, error) {
	c, ok := FormatTimestamp(created)
	if !ok {
		return "", "", malformed(entity, id, "createdAt")
	}
	u, ok := FormatTimestamp(updated)
	if !ok {
		return "", "", malformed(entity, id, "updatedAt")
	}
	return c, u, nil
}
