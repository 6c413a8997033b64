// Package timeutil holds the clock and date helpers used when entering and
// displaying deposit times.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FriendlyDateLayout renders a medium-length date, e.g. "Oct 14, 2026".
const FriendlyDateLayout = "Jan 2, 2006"

// Convert12To24 maps a 12-hour clock hour (1-12) to 0-23.
func Convert12To24(hour int, am bool) int {
	if am {
		if hour == 12 {
			return 0
		}
		return hour
	}
	return hour%12 + 12
}

// Convert24To12 maps a 0-23 hour to the 12-hour clock (1-12).
func Convert24To12(hour int) int {
	switch {
	case hour == 0:
		return 12
	case hour > 12:
		return hour - 12
	default:
		return hour
	}
}

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m?\.?$`)

// ParseClock parses a 12-hour time such as "7pm", "7:15 PM" or "12:00am"
// and returns the 24-hour hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, 0, fmt.Errorf("parse clock %q: expected a time like 7:15pm", s)
	}
	h, _ := strconv.Atoi(m[1])
	if h < 1 || h > 12 {
		return 0, 0, fmt.Errorf("parse clock %q: hour must be between 1 and 12", s)
	}
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
		if minute > 59 {
			return 0, 0, fmt.Errorf("parse clock %q: minute must be between 0 and 59", s)
		}
	}
	return Convert12To24(h, m[3] == "a"), minute, nil
}

// At returns day's date at hour:minute in day's location.
func At(day time.Time, hour, minute int) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, day.Location())
}

// FriendlyDate formats t in loc as FriendlyDateLayout. A nil loc uses
// time.Local.
func FriendlyDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(FriendlyDateLayout)
}
