package commands

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"stichting-asha/internal/agenda"
	"stichting-asha/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new%d", n)
	}
}

func TestPlanSeries(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	weekly := func(id, date string) models.Event {
		return models.Event{
			ID: id, Title: "Taalles", Type: models.EventTypeWekelijks, Date: date,
			StartTime: "19:00", EndTime: "21:00", Zaal: "Zaal 2", Author: "Anita",
			RecurringWeeks: intPtr(3), RecurringDayOfWeek: intPtr(2),
		}
	}

	events := []models.Event{
		{ID: "x", Title: "Open dag", Type: models.EventTypeEenmalig, Date: "2025-04-01"},
		weekly("abc", "2025-03-18"),
		weekly("abc_2", "2025-03-11"),
		weekly("abc_3", "2025-03-25"),
		{ID: "s1_1", Title: "Yoga", Type: models.EventTypeStandaard, Date: "2025-03-12", SeriesID: "s1"},
		{ID: "s1_2", Title: "Yoga", Type: models.EventTypeStandaard, Date: "2025-03-19", SeriesID: "s1"},
		{ID: "def", Title: "Koor", Type: models.EventTypeStandaard, Date: "2025-03-13", Time: "10:00"},
		{ID: "def_2", Title: "Koor", Type: models.EventTypeStandaard, Date: "2025-03-20", Time: "10:00"},
	}

	plans := planSeries(agenda.GroupEvents(events), sequence(), now)
	require.Len(t, plans, 2)

	taal := plans[0]
	assert.Equal(t, "new1", taal.Series.ID)
	assert.Equal(t, []string{"abc", "abc_2", "abc_3"}, taal.EventIDs)
	assert.Equal(t, "2025-03-11", taal.Series.StartDate)
	assert.Equal(t, models.EventTypeWekelijks, taal.Series.Type)
	assert.Equal(t, "Zaal 2", taal.Series.Zaal)
	assert.Contains(t, taal.Series.RRule, "FREQ=WEEKLY")
	assert.Equal(t, now, taal.Series.CreatedAt)

	koor := plans[1]
	assert.Equal(t, "new2", koor.Series.ID)
	assert.Equal(t, []string{"def", "def_2"}, koor.EventIDs)
	assert.Equal(t, 2, koor.Series.Count)
	assert.Equal(t, "10:00", koor.Series.StartTime)
}

func TestPlanSeries_NothingToDo(t *testing.T) {
	events := []models.Event{
		{ID: "x", Type: models.EventTypeEenmalig, Date: "2025-04-01"},
		{ID: "s1_1", Type: models.EventTypeDagelijks, SeriesID: "s1", Date: "2025-03-12"},
	}
	assert.Empty(t, planSeries(agenda.GroupEvents(events), sequence(), time.Now()))
}

func TestNewUser(t *testing.T) {
	user, err := newUser("Anita", "  Anita@Example.org ", "beheerder")
	require.NoError(t, err)
	assert.Equal(t, "anita@example.org", user.Email)
	assert.Equal(t, models.RoleBeheerder, user.Role)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = newUser("Anita", "anita@example.org", "admin")
	assert.Error(t, err)

	_, err = newUser("Anita", "   ", "user")
	assert.Error(t, err)
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("geheim123\r\nlaatste"))

	first, err := readLine(r)
	require.NoError(t, err)
	assert.Equal(t, "geheim123", first)

	second, err := readLine(r)
	require.NoError(t, err)
	assert.Equal(t, "laatste", second)

	_, err = readLine(r)
	assert.Error(t, err)
}

func TestPrintGroupsAndFind(t *testing.T) {
	events := []models.Event{
		{ID: "abc", Title: "Taalles", Type: models.EventTypeWekelijks, Date: "2025-03-11", StartTime: "19:00",
			RecurringWeeks: intPtr(2), RecurringDayOfWeek: intPtr(2)},
		{ID: "abc_2", Title: "Taalles", Type: models.EventTypeWekelijks, Date: "2025-03-18", StartTime: "19:00",
			RecurringWeeks: intPtr(2), RecurringDayOfWeek: intPtr(2)},
	}
	groups := agenda.GroupEvents(events)

	var buf bytes.Buffer
	printGroups(&buf, groups)
	out := buf.String()
	assert.Contains(t, out, "HERHALING")
	assert.Contains(t, out, "2025-03-11,2025-03-18")
	assert.Contains(t, out, "2 weken op dinsdag")

	require.NotNil(t, findGroup(groups, "abc"))
	assert.Equal(t, 2, findGroup(groups, "abc").EventCount)
	assert.Nil(t, findGroup(groups, "missing"))
}
