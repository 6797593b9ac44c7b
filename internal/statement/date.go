package statement

import (
	"strconv"
	"strings"
	"time"
)

// fallbackLayouts are tried after the day/month/year form fails. None of
// them put the month first, so an invalid day such as 31/02 is never
// reinterpreted.
var fallbackLayouts = []string{
	"2006/01/02",
	"2006/1/2",
	"02/Jan/2006",
	"2/Jan/2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC3339,
}

// ParseDate parses a statement date. Day/month/year with slashes or dashes is
// the expected form. Empty values and "N/A" report ok == false, as does any
// value that is not a real calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.Trim(s, "\" \t\r\n")
	if s == "" || strings.EqualFold(s, "n/a") {
		return time.Time{}, false
	}
	s = strings.ReplaceAll(s, "-", "/")

	if parts := strings.Split(s, "/"); len(parts) == 3 && len(parts[2]) == 4 {
		day, errD := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		year, errY := strconv.Atoi(parts[2])
		if errD == nil && errM == nil && errY == nil {
			if t, ok := calendarDate(year, month, day); ok {
				return t, true
			}
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// calendarDate rejects combinations that time.Date would silently normalise.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
