package agenda

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"stichting-asha/internal/models"
)

const (
	ICSProductID = "-//Stichting Asha//Agenda//NL"
	icsStamp     = "20060102T150405Z"
	icsLocal     = "20060102T150405"

	// icsLineLimit is the longest content line in octets, without CRLF.
	icsLineLimit = 75
)

var icsWeekdays = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func icsText(s string) string {
	return icsEscaper.Replace(s)
}

// eventTimes resolves the start and end of an event in loc. Events without
// a usable time are all-day.
func eventTimes(e *models.Event, loc *time.Location) (start, end time.Time, allDay bool, ok bool) {
	day, err := time.ParseInLocation("2006-01-02", FormatDateForInput(e.Date, loc), loc)
	if err != nil {
		return time.Time{}, time.Time{}, false, false
	}

	startClock := FormatTimeForInput(e.StartTime, loc)
	if startClock == "" {
		startClock = FormatTimeForInput(e.Time, loc)
	}
	st, err := time.Parse("15:04", startClock)
	if err != nil {
		return day, day.AddDate(0, 0, 1), true, true
	}
	start = time.Date(day.Year(), day.Month(), day.Day(), st.Hour(), st.Minute(), 0, 0, loc)

	end = start.Add(time.Hour)
	if et, err := time.Parse("15:04", FormatTimeForInput(e.EndTime, loc)); err == nil {
		candidate := time.Date(day.Year(), day.Month(), day.Day(), et.Hour(), et.Minute(), 0, 0, loc)
		if candidate.After(start) {
			end = candidate
		}
	}
	return start, end, false, true
}

// WriteICS writes events as an iCalendar feed with times in loc. Events
// whose date cannot be read are skipped.
func WriteICS(w io.Writer, events []models.Event, loc *time.Location, now time.Time) error {
	ew := &errWriter{w: w}

	ew.line("BEGIN:VCALENDAR")
	ew.line("VERSION:2.0")
	ew.printf("PRODID:%s", ICSProductID)
	ew.line("CALSCALE:GREGORIAN")
	ew.line("X-WR-CALNAME:Agenda Stichting Asha")
	ew.printf("X-WR-TIMEZONE:%s", loc.String())
	writeTimezone(ew, loc, now.In(loc).Year())

	stamp := now.UTC().Format(icsStamp)
	for i := range events {
		e := &events[i]
		start, end, allDay, ok := eventTimes(e, loc)
		if !ok {
			continue
		}

		ew.line("BEGIN:VEVENT")
		ew.printf("UID:%s@stichtingasha.nl", e.ID)
		ew.printf("DTSTAMP:%s", stamp)
		if allDay {
			ew.printf("DTSTART;VALUE=DATE:%s", start.Format("20060102"))
			ew.printf("DTEND;VALUE=DATE:%s", end.Format("20060102"))
		} else {
			ew.printf("DTSTART;TZID=%s:%s", loc.String(), start.Format(icsLocal))
			ew.printf("DTEND;TZID=%s:%s", loc.String(), end.Format(icsLocal))
		}
		ew.printf("SUMMARY:%s", icsText(e.Title))
		if e.Description != "" {
			ew.printf("DESCRIPTION:%s", icsText(e.Description))
		}
		if where := eventLocation(e); where != "" {
			ew.printf("LOCATION:%s", icsText(where))
		}
		if desc := RecurringDescription(e); desc != "" {
			ew.printf("CATEGORIES:%s", icsText(desc))
		}
		ew.line("END:VEVENT")
	}

	ew.line("END:VCALENDAR")
	return ew.err
}

// zoneChange is an offset transition of a location.
type zoneChange struct {
	at       time.Time // first instant with the new offset
	from, to int       // offsets in seconds east of UTC
	name     string
	dst      bool
}

// zoneChanges scans year in loc hour by hour. Transitions off the hour
// are reported at the next full hour.
func zoneChanges(loc *time.Location, year int) []zoneChange {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var changes []zoneChange
	_, prev := start.In(loc).Zone()
	for t := start.Add(time.Hour); t.Before(end); t = t.Add(time.Hour) {
		local := t.In(loc)
		name, offset := local.Zone()
		if offset != prev {
			changes = append(changes, zoneChange{at: t, from: prev, to: offset, name: name, dst: local.IsDST()})
			prev = offset
		}
	}
	return changes
}

// writeTimezone emits the VTIMEZONE the TZID references point at. Each
// transition of year becomes a yearly rule on the same weekday of the
// month, which is how European and North American zones change.
func writeTimezone(ew *errWriter, loc *time.Location, year int) {
	ew.line("BEGIN:VTIMEZONE")
	ew.printf("TZID:%s", loc.String())

	changes := zoneChanges(loc, year)
	if len(changes) == 0 {
		name, offset := time.Date(year, 1, 1, 0, 0, 0, 0, loc).Zone()
		ew.line("BEGIN:STANDARD")
		ew.line("DTSTART:19700101T000000")
		ew.printf("TZOFFSETFROM:%s", icsOffset(offset))
		ew.printf("TZOFFSETTO:%s", icsOffset(offset))
		ew.printf("TZNAME:%s", name)
		ew.line("END:STANDARD")
	}

	for _, ch := range changes {
		kind := "STANDARD"
		if ch.dst {
			kind = "DAYLIGHT"
		}
		// DTSTART is the wall clock just before the change
		wall := ch.at.In(time.FixedZone("", ch.from))

		ew.printf("BEGIN:%s", kind)
		ew.printf("DTSTART:%s", wall.Format(icsLocal))
		ew.printf("RRULE:FREQ=YEARLY;BYMONTH=%d;BYDAY=%s", int(wall.Month()), weekdayOfMonth(wall))
		ew.printf("TZOFFSETFROM:%s", icsOffset(ch.from))
		ew.printf("TZOFFSETTO:%s", icsOffset(ch.to))
		ew.printf("TZNAME:%s", ch.name)
		ew.printf("END:%s", kind)
	}

	ew.line("END:VTIMEZONE")
}

// weekdayOfMonth renders t's day as an RRULE BYDAY value: "-1SU" for the
// last Sunday of the month, "2SU" for the second one.
func weekdayOfMonth(t time.Time) string {
	day := icsWeekdays[t.Weekday()]
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if t.Day()+7 > lastDay {
		return "-1" + day
	}
	return fmt.Sprintf("%d%s", (t.Day()-1)/7+1, day)
}

func icsOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d%02d", sign, seconds/3600, seconds%3600/60)
}

// foldLine splits s into content lines of at most icsLineLimit octets.
// Continuation lines start with a space and never split a UTF-8 sequence.
func foldLine(s string) string {
	if len(s) <= icsLineLimit {
		return s
	}

	var b strings.Builder
	limit := icsLineLimit
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		// the leading space counts towards the limit
		limit = icsLineLimit - 1
	}
	b.WriteString(s)
	return b.String()
}

func eventLocation(e *models.Event) string {
	switch {
	case e.Location != "" && e.Zaal != "":
		return e.Location + " - " + e.Zaal
	case e.Zaal != "":
		return e.Zaal
	}
	return e.Location
}

// errWriter keeps the first write error and stops writing after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) line(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, foldLine(s)+"\r\n")
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	ew.line(fmt.Sprintf(format, args...))
}
