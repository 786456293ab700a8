package agenda

import (
	"regexp"
	"time"
	_ "time/tzdata"

	"stichting-asha/internal/models"
)

// DefaultTimezone is where the foundation's events take place.
const DefaultTimezone = "Europe/Amsterdam"

var (
	clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	timestampLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
)

// Location loads name, falling back to Europe/Amsterdam.
func Location(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, _ = time.LoadLocation(DefaultTimezone)
	}
	return loc
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimeForInput normalizes a stored time to HH:MM in loc. Values that
// already are HH:MM pass through; unparseable values are returned as is.
func FormatTimeForInput(s string, loc *time.Location) string {
	if s == "" || clockPattern.MatchString(s) {
		return s
	}
	t, ok := parseTimestamp(s)
	if !ok {
		return s
	}
	return t.In(loc).Format("15:04")
}

// FormatDateForInput normalizes a stored date to YYYY-MM-DD in loc. A bare
// date is read as midnight UTC.
func FormatDateForInput(s string, loc *time.Location) string {
	if s == "" {
		return s
	}
	if datePattern.MatchString(s) {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return s
		}
		return t.In(loc).Format("2006-01-02")
	}
	t, ok := parseTimestamp(s)
	if !ok {
		return s
	}
	return t.In(loc).Format("2006-01-02")
}

// Normalize applies both formatters to an event's times and date.
func Normalize(events []models.Event, loc *time.Location) {
	for i := range events {
		events[i].StartTime = FormatTimeForInput(events[i].StartTime, loc)
		events[i].EndTime = FormatTimeForInput(events[i].EndTime, loc)
		events[i].Date = FormatDateForInput(events[i].Date, loc)
	}
}
