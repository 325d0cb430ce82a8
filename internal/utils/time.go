package utils

import "time"

// Today returns the current date truncated to midnight UTC, the key all day
// aggregates are stored under.
func Today() time.Time {
	return DateOf(time.Now().UTC())
}

// DateOf truncates a timestamp to its date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
