package service

import "time"

// RetentionBoundary is the oldest instant kept in the local event log: the
// start of the calendar month before now, in UTC.
func RetentionBoundary(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC)
}
