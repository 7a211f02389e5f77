// Package timeparse converts upstream date strings ("3 weeks ago",
// "Premiered Mar 3, 2024", "2024-03-03T10:00:00-08:00") into absolute UTC
// timestamps.
package timeparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// prefixes are stripped (case-insensitive) before matching. Longer variants
// come first so "Streamed live on" is not cut down to "live on ...".
var prefixes = []string{
	"streamed live on",
	"streamed live",
	"streamed",
	"premiered on",
	"premiered",
	"published on",
	"started streaming on",
	"started streaming",
	"uploaded on",
	"scheduled for",
}

var relativeRE = regexp.MustCompile(`(?i)^(\d+|an?)\s+(second|minute|hour|day|week|month|year)s?\s+ago$`)

// absoluteLayouts are tried before the generic parser; they are the formats
// the structured upstream fields actually use.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// minYear is the floor for any parsed date. The generic parser fills a
// missing year with 0, so "Jan 31" would otherwise come back as 0000-01-31.
const minYear = 2005

// maxCalendarAmount bounds day/week/month/year amounts so the calendar
// arithmetic cannot overflow int.
const maxCalendarAmount = 1_000_000

var clockUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
}

// Normalizer resolves date expressions relative to Now.
type Normalizer struct {
	Now func() time.Time
}

// Default uses the wall clock.
var Default = &Normalizer{Now: time.Now}

// Normalize resolves text to an absolute timestamp. The second result is
// false when the text is not a date; callers must treat that as "unknown",
// never as the current time.
func (n *Normalizer) Normalize(text string) (time.Time, bool) {
	s := stripPrefix(text)
	if s == "" {
		return time.Time{}, false
	}
	if m := relativeRE.FindStringSubmatch(s); m != nil {
		return n.subtract(m[1], m[2])
	}
	return parseAbsolute(s)
}

// ParseAbsolute accepts only absolute dates (after prefix stripping);
// relative phrases are rejected.
func (n *Normalizer) ParseAbsolute(text string) (time.Time, bool) {
	s := stripPrefix(text)
	if s == "" || relativeRE.MatchString(s) {
		return time.Time{}, false
	}
	return parseAbsolute(s)
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now().UTC()
	}
	return n.Now().UTC()
}

func (n *Normalizer) subtract(amount, unit string) (time.Time, bool) {
	var k int
	switch strings.ToLower(amount) {
	case "a", "an":
		k = 1
	default:
		v, err := strconv.Atoi(amount)
		if err != nil {
			return time.Time{}, false
		}
		k = v
	}

	unit = strings.ToLower(unit)
	now := n.now()
	if d, ok := clockUnits[unit]; ok {
		if int64(k) > math.MaxInt64/int64(d) {
			return time.Time{}, false
		}
		return now.Add(-time.Duration(k) * d), true
	}
	if k > maxCalendarAmount {
		return time.Time{}, false
	}
	switch unit {
	case "day":
		return now.AddDate(0, 0, -k), true
	case "week":
		return now.AddDate(0, 0, -7*k), true
	case "month":
		return SubMonths(now, k), true
	case "year":
		return SubMonths(now, 12*k), true
	}
	return time.Time{}, false
}

// SubMonths subtracts k calendar months, clamping the day-of-month to the
// length of the target month (Mar 31 - 1 month = Feb 29 in a leap year).
// time.AddDate would normalize Feb 31 forward into March instead.
func SubMonths(t time.Time, k int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 - k
	y += floorDiv(total, 12)
	m = time.Month(total-12*floorDiv(total, 12)) + 1
	if last := daysIn(y, m); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func stripPrefix(text string) string {
	s := strings.TrimSpace(text)
	lower := strings.ToLower(s)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p+" ") {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

func parseAbsolute(s string) (time.Time, bool) {
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return plausible(t.UTC())
		}
	}
	// dateparse happily reads a bare number as a unix timestamp or a
	// yyyymmdd date; upstream text never means that.
	if isDigits(s) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return plausible(t.UTC())
}

func plausible(t time.Time) (time.Time, bool) {
	if t.Year() < minYear {
		return time.Time{}, false
	}
	return t, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
