package agenda

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"stichting-asha/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteICS(t *testing.T) {
	loc := Location(DefaultTimezone)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "e1", Title: "Yoga, ontspanning", Description: "Neem een mat mee;\nwater", Type: models.EventTypeEenmalig, StartTime: "19:00", EndTime: "20:30", Date: "2025-03-05", Location: "Buurthuis", Zaal: "Zaal 2"},
		{ID: "e2", Title: "Markt", Type: models.EventTypeEenmalig, Date: "2025-03-08"},
		{ID: "e3", Title: "Kapot", Type: models.EventTypeEenmalig, Date: "onbekend"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, events, loc, now))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "DTSTAMP:20250301T090000Z")
	assert.Contains(t, out, "DTSTART;TZID=Europe/Amsterdam:20250305T190000")
	assert.Contains(t, out, "DTEND;TZID=Europe/Amsterdam:20250305T203000")
	assert.Contains(t, out, `SUMMARY:Yoga\, ontspanning`)
	assert.Contains(t, out, `DESCRIPTION:Neem een mat mee\;\nwater`)
	assert.Contains(t, out, "LOCATION:Buurthuis - Zaal 2")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250308")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250309")
	assert.NotContains(t, out, "Kapot")
}

func TestWriteICS_EndBeforeStartGetsOneHour(t *testing.T) {
	var buf bytes.Buffer
	events := []models.Event{{ID: "e1", Title: "x", StartTime: "19:00", EndTime: "18:00", Date: "2025-03-05"}}
	require.NoError(t, WriteICS(&buf, events, Location(DefaultTimezone), time.Now()))
	assert.Contains(t, buf.String(), "DTEND;TZID=Europe/Amsterdam:20250305T200000")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteICS_ReportsWriteError(t *testing.T) {
	err := WriteICS(failingWriter{}, nil, Location(DefaultTimezone), time.Now())
	assert.Error(t, err)
}

func TestWriteICS_Timezone(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, WriteICS(&buf, nil, Location(DefaultTimezone), now))
	out := buf.String()

	assert.Contains(t, out, "BEGIN:VTIMEZONE\r\nTZID:Europe/Amsterdam\r\n")
	assert.Contains(t, out, "BEGIN:DAYLIGHT\r\n"+
		"DTSTART:20250330T020000\r\n"+
		"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU\r\n"+
		"TZOFFSETFROM:+0100\r\n"+
		"TZOFFSETTO:+0200\r\n"+
		"TZNAME:CEST\r\n"+
		"END:DAYLIGHT\r\n")
	assert.Contains(t, out, "BEGIN:STANDARD\r\n"+
		"DTSTART:20251026T030000\r\n"+
		"RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU\r\n"+
		"TZOFFSETFROM:+0200\r\n"+
		"TZOFFSETTO:+0100\r\n"+
		"TZNAME:CET\r\n"+
		"END:STANDARD\r\n")
}

func TestWriteICS_FixedZone(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, nil, time.UTC, time.Now()))
	out := buf.String()

	assert.Contains(t, out, "TZID:UTC\r\nBEGIN:STANDARD\r\nDTSTART:19700101T000000\r\nTZOFFSETFROM:+0000\r\nTZOFFSETTO:+0000\r\n")
	assert.NotContains(t, out, "DAYLIGHT")
}

func TestWriteICS_FoldsLongLines(t *testing.T) {
	description := strings.Repeat("Samen koken met ingrediënten uit de moestuin. ", 6)
	events := []models.Event{{ID: "e1", Title: "Kookles", Description: description, Date: "2025-03-05", StartTime: "18:00"}}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, events, Location(DefaultTimezone), time.Now()))
	out := buf.String()

	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75, line)
		assert.True(t, utf8.ValidString(line), line)
	}

	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	assert.Contains(t, unfolded, "DESCRIPTION:"+icsText(description)+"\r\n")
}

func TestFoldLine(t *testing.T) {
	assert.Equal(t, "kort", foldLine("kort"))

	long := strings.Repeat("a", 75+74+10)
	folded := foldLine(long)
	parts := strings.Split(folded, "\r\n")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 75)
	assert.Len(t, parts[1], 75)
	assert.Equal(t, " "+strings.Repeat("a", 10), parts[2])
}

func TestWeekdayOfMonth(t *testing.T) {
	assert.Equal(t, "-1SU", weekdayOfMonth(time.Date(2025, 3, 30, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2SU", weekdayOfMonth(time.Date(2025, 3, 9, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1SU", weekdayOfMonth(time.Date(2025, 11, 2, 2, 0, 0, 0, time.UTC)))
}
