package primitive

import (
	"strconv"
	"time"

	"tagged-serde/diagnostic"
	"tagged-serde/utils"
)

// TimestampLayout is the canonical text form of a timestamp: UTC, whole seconds.
const TimestampLayout = "2006-01-02T15:04:05Z"

// FormatTimestamp renders t in UTC with the canonical layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp reads the canonical layout and nothing else: exactly 20
// bytes, fixed separators, no fraction and no offset other than Z.
func ParseTimestamp(s string) (time.Time, error) {
	bad := func() (time.Time, error) {
		return time.Time{}, diagnostic.FormatViolation("invalid datetime format: %s", s)
	}

	if len(s) != len(TimestampLayout) {
		return bad()
	}

	for _, sep := range []struct {
		at int
		c  byte
	}{{4, '-'}, {7, '-'}, {10, 'T'}, {13, ':'}, {16, ':'}, {19, 'Z'}} {
		if s[sep.at] != sep.c {
			return bad()
		}
	}

	fields := [6]int{}
	for i, span := range [6][2]int{{0, 4}, {5, 7}, {8, 10}, {11, 13}, {14, 16}, {17, 19}} {
		part := s[span[0]:span[1]]
		if !utils.IsDigits(part) {
			return bad()
		}

		fields[i], _ = strconv.Atoi(part)
	}

	year, month, day, hour, minute, second := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]

	if !utils.IsInRange(1, month, 12) ||
		!utils.IsInRange(1, day, daysIn(year, time.Month(month))) ||
		!utils.IsInRange(0, hour, 23) ||
		!utils.IsInRange(0, minute, 59) ||
		!utils.IsInRange(0, second, 59) {
		return bad()
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
