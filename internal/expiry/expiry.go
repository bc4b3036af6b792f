// Package expiry converts token lifetimes into absolute expiration instants and
// back. The canonical persisted form is RFC 3339 UTC; the localized en-US form
// ("M/D/YYYY, h:mm:ss AM") exists for display and for reading records written by
// older clients that persisted the display string directly.
package expiry

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// localizedLayout is the en-US short date/time rendering used by devices.
// No leading zeros on month, day, or hour.
const localizedLayout = "1/2/2006, 3:04:05 PM"

// ExpiresAt returns the absolute instant at which a token issued at now with a
// lifetime of seconds expires. A non-positive lifetime yields now itself, which
// downstream comparison treats as already expired.
func ExpiresAt(now time.Time, seconds int) time.Time {
	if seconds < 0 {
		seconds = 0
	}
	return now.UTC().Add(time.Duration(seconds) * time.Second)
}

// FormatInstant renders t as an RFC 3339 UTC string, the canonical stored form.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Localize renders t in loc using the en-US short date/time format.
func Localize(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(localizedLayout)
}

// localizedPattern matches "M/D/YYYY", optionally followed by ", h:mm" with
// optional seconds and an optional AM/PM marker.
var localizedPattern = regexp.MustCompile(
	`^(\d+)/(\d+)/(\d+)(?:, (\d+):(\d+)(?::(\d+))?)?(?: (AM|PM))?$`)

// ParseLocalized parses a string produced by Localize back into an instant in
// loc. A missing time of day means midnight, missing seconds mean zero, and a
// missing AM/PM marker means the hour is already on a 24-hour clock. Hour 12
// is noon with a PM marker and midnight with an AM marker.
func ParseLocalized(s string, loc *time.Location) (time.Time, error) {
	parts := localizedPattern.FindStringSubmatch(s)
	if parts == nil {
		return time.Time{}, fmt.Errorf("unrecognized expiration format: %q", s)
	}

	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])
	year, _ := strconv.Atoi(parts[3])

	var hours, minutes, seconds int
	if parts[4] != "" {
		hours, _ = strconv.Atoi(parts[4])
		minutes, _ = strconv.Atoi(parts[5])
	}
	if parts[6] != "" {
		seconds, _ = strconv.Atoi(parts[6])
	}
	switch parts[7] {
	case "PM":
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	}

	return time.Date(year, time.Month(month), day, hours, minutes, seconds, 0, loc), nil
}

// ParseStored interprets a persisted expiration value. Canonical RFC 3339 is
// tried first; the localized display form is accepted as a fallback so records
// written by older clients still resolve.
func ParseStored(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return ParseLocalized(s, loc)
}
