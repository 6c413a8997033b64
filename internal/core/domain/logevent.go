package domain

import "time"

// LogLevel is the severity of a locally logged event.
type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
)

// Valid reports whether l is one of the known severities.
func (l LogLevel) Valid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelError:
		return true
	}
	return false
}

// IndexTimeLayout is the fixed-width UTC layout used in storage keys, so
// that byte order equals chronological order.
const IndexTimeLayout = "2006-01-02T15:04:05.000Z"

// LogEvent is an immutable diagnostic record.
type LogEvent struct {
	ID        string
	Message   string
	Level     LogLevel
	Timestamp time.Time
}

// DBIndex is the storage key: the UTC timestamp followed by the id. The id
// suffix keeps same-millisecond events unique and stably ordered.
func (e LogEvent) DBIndex() string {
	return IndexKey(e.Timestamp) + "-" + e.ID
}

// IndexKey renders t the way it appears at the front of a DBIndex. For a
// millisecond-aligned t, a key compares >= IndexKey(t) exactly when its
// timestamp is at or after t.
func IndexKey(t time.Time) string {
	return t.UTC().Format(IndexTimeLayout)
}
