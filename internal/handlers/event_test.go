package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"stichting-asha/internal/agenda"
	"stichting-asha/internal/config"
	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventServer(t *testing.T, events *fakeEvents) (*testServer, *fakeActivity) {
	t.Helper()
	activity := &fakeActivity{}
	h := NewEventHandler(events, config.DefaultSite(), agenda.Location(agenda.DefaultTimezone), activity, nullLogger())
	h.now = func() time.Time { return testNow }
	return newTestServer(t, &API{Events: h}), activity
}

func validEvent() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Yoga",
		"description": "Yoga voor beginners",
		"date":        "2025-03-14",
		"time":        "19:00",
		"endTime":     "20:30",
		"location":    "Buurthuis",
		"zaal":        "Zaal 2",
	}
}

func TestCreateEvent(t *testing.T) {
	events := newFakeEvents()
	srv, activity := newEventServer(t, events)

	w := srv.do(http.MethodPost, "/api/events", models.RoleBeheerder, validEvent())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[models.Event](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Test Beheerder", created.Author)
	assert.Equal(t, models.EventTypeEenmalig, created.Type)
	assert.Equal(t, "19:00", created.StartTime)
	assert.Equal(t, "2025-03-14", created.Date)
	assert.Equal(t, 1, events.count())

	entries := activity.all()
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityCreate, entries[0].Kind)
	assert.Equal(t, models.EntityEvent, entries[0].EntityType)
	assert.Equal(t, created.ID, entries[0].EntityID)
}

func TestCreateEvent_MissingFieldWritesNothing(t *testing.T) {
	for _, field := range []string{"title", "description", "date", "time", "location"} {
		t.Run(field, func(t *testing.T) {
			events := newFakeEvents()
			srv, activity := newEventServer(t, events)

			body := validEvent()
			delete(body, field)

			w := srv.do(http.MethodPost, "/api/events", models.RoleBeheerder, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, msgRequired, errorOf(t, w))
			assert.Zero(t, events.count())
			assert.Empty(t, activity.all())
		})
	}
}

func TestCreateEvent_OnlyBeheerder(t *testing.T) {
	for _, role := range []models.Role{"", models.RoleDeveloper, models.RoleVrijwilliger, models.RoleStagiair, models.RoleUser} {
		t.Run(string(role), func(t *testing.T) {
			events := newFakeEvents()
			srv, activity := newEventServer(t, events)

			w := srv.do(http.MethodPost, "/api/events", role, validEvent())
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, middleware.MsgEventsCreateDenied, errorOf(t, w))
			assert.Zero(t, events.count())
			assert.Empty(t, activity.all())
		})
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	tests := []struct {
		name  string
		patch map[string]interface{}
		want  string
	}{
		{"unknown type", map[string]interface{}{"type": "maandelijks"}, msgEventInvalidType},
		{"bad date", map[string]interface{}{"date": "14-03-2025"}, msgEventInvalidDate},
		{"day out of range", map[string]interface{}{"type": "dagelijks", "recurringDays": []int{1, 7}}, msgEventInvalidDays},
		{"unknown room", map[string]interface{}{"zaal": "Zaal 11"}, msgUnknownRoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := newFakeEvents()
			srv, _ := newEventServer(t, events)

			body := validEvent()
			for k, v := range tt.patch {
				body[k] = v
			}

			w := srv.do(http.MethodPost, "/api/events", models.RoleBeheerder, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, errorOf(t, w))
			assert.Zero(t, events.count())
		})
	}
}

func TestCreateEvent_NormalizesTimestampDate(t *testing.T) {
	events := newFakeEvents()
	srv, _ := newEventServer(t, events)

	body := validEvent()
	body["date"] = "2025-03-13T23:30:00Z"

	w := srv.do(http.MethodPost, "/api/events", models.RoleBeheerder, body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2025-03-14", decode[models.Event](t, w).Date)
}

func TestGetEvents_Sorted(t *testing.T) {
	events := newFakeEvents(
		models.Event{ID: "b", Title: "B", Date: "2025-03-02", Time: "10:00"},
		models.Event{ID: "c", Title: "C", Date: "2025-03-01", Time: "18:00"},
		models.Event{ID: "a", Title: "A", Date: "2025-03-01", Time: "09:00"},
	)
	srv, _ := newEventServer(t, events)

	w := srv.do(http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decode[[]models.Event](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{list[0].Title, list[1].Title, list[2].Title})
}

func TestEventByID_NotFound(t *testing.T) {
	srv, activity := newEventServer(t, newFakeEvents())

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body interface{}
		if method == http.MethodPut {
			body = validEvent()
		}
		w := srv.do(method, "/api/events/missing", models.RoleBeheerder, body)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, msgEventNotFound, errorOf(t, w), method)
	}
	assert.Empty(t, activity.all())
}

func TestUpdateEvent_KeepsStoredFields(t *testing.T) {
	created := testNow.Add(-48 * time.Hour)
	events := newFakeEvents(models.Event{
		ID:        "e1",
		Title:     "Oud",
		Author:    "Radj",
		SeriesID:  "s1",
		Date:      "2025-03-01",
		CreatedAt: created,
	})
	srv, activity := newEventServer(t, events)

	w := srv.do(http.MethodPut, "/api/events/e1", models.RoleDeveloper, validEvent())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := events.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Yoga", stored.Title)
	assert.Equal(t, "Radj", stored.Author)
	assert.Equal(t, "s1", stored.SeriesID)
	assert.True(t, stored.CreatedAt.Equal(created))
	assert.True(t, stored.UpdatedAt.Equal(testNow))

	require.Len(t, activity.all(), 1)
	assert.Equal(t, models.ActivityUpdate, activity.all()[0].Kind)
}

func TestUpdateEvent_Forbidden(t *testing.T) {
	events := newFakeEvents(models.Event{ID: "e1", Title: "Oud"})
	srv, _ := newEventServer(t, events)

	w := srv.do(http.MethodPut, "/api/events/e1", models.RoleVrijwilliger, validEvent())
	assert.Equal(t, http.StatusForbidden, w.Code)

	stored, err := events.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Oud", stored.Title)
}

func TestDeleteEvent(t *testing.T) {
	events := newFakeEvents(models.Event{ID: "e1", Title: "Yoga", Date: "2025-03-14"})
	srv, activity := newEventServer(t, events)

	w := srv.do(http.MethodDelete, "/api/events/e1", models.RoleBeheerder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, events.count())

	entries := activity.all()
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityDelete, entries[0].Kind)
	assert.Equal(t, "e1", entries[0].EntityID)

	w = srv.do(http.MethodDelete, "/api/events/e1", models.RoleBeheerder, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
