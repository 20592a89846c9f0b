package depop

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relTimeRx = regexp.MustCompile(`(?i)\b(\d+)\s*(minute|hour|day|week|month)s?\s*ago\b`)

// parseISOTime parses an ISO-8601 timestamp into UTC. Returns false for
// anything it cannot understand.
func parseISOTime(ts string) (time.Time, bool) {
	clean := strings.TrimSpace(ts)
	if clean == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, clean); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseRelativeTime converts phrases like "3 hours ago" to an absolute UTC
// time relative to now.
func parseRelativeTime(text string, now time.Time) (time.Time, bool) {
	m := relTimeRx.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	qty, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	var delta time.Duration
	switch strings.ToLower(m[2]) {
	case "minute":
		delta = time.Duration(qty) * time.Minute
	case "hour":
		delta = time.Duration(qty) * time.Hour
	case "day":
		delta = time.Duration(qty) * 24 * time.Hour
	case "week":
		delta = time.Duration(qty) * 7 * 24 * time.Hour
	case "month":
		delta = time.Duration(qty) * 30 * 24 * time.Hour
	default:
		return time.Time{}, false
	}

	return now.UTC().Add(-delta), true
}

// ageDaysFrom returns the non-negative age in days of ts relative to now.
func ageDaysFrom(ts, now time.Time) float64 {
	days := now.Sub(ts).Seconds() / 86400.0
	if days < 0 {
		return 0
	}
	return days
}
