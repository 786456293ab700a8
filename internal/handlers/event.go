// internal/handlers/event.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"stichting-asha/internal/agenda"
	"stichting-asha/internal/config"
	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"
	"stichting-asha/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgEventNotFound    = "Evenement niet gevonden"
	msgEventInvalidType = "Ongeldig type evenement"
	msgEventInvalidDate = "Ongeldige datum"
	msgEventInvalidDays = "Ongeldige herhalingsdagen"
	msgUnknownRoom      = "Onbekende zaal"
	msgEventFetch       = "Fout bij het ophalen van evenementen"
	msgEventSave        = "Fout bij het opslaan van het evenement"
	msgEventDelete      = "Fout bij het verwijderen van het evenement"
	msgEventDeleted     = "Evenement verwijderd"
)

type EventHandler struct {
	events   EventRepository
	site     *config.Site
	loc      *time.Location
	activity ActivityRecorder
	log      logrus.FieldLogger
	now      func() time.Time
}

// EventRequest is the body of POST and PUT. Recurring events are still
// written as separate rows by older clients.
type EventRequest struct {
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Type               models.EventType `json:"type"`
	StartTime          string           `json:"startTime"`
	EndTime            string           `json:"endTime"`
	Time               string           `json:"time"`
	Location           string           `json:"location"`
	Zaal               string           `json:"zaal"`
	Date               string           `json:"date"`
	RecurringDays      []int            `json:"recurringDays"`
	RecurringWeeks     *int             `json:"recurringWeeks"`
	RecurringDayOfWeek *int             `json:"recurringDayOfWeek"`
	RecurringID        string           `json:"recurringId"`
}

func NewEventHandler(events EventRepository, site *config.Site, loc *time.Location, activity ActivityRecorder, log logrus.FieldLogger) *EventHandler {
	return &EventHandler{
		events:   events,
		site:     site,
		loc:      loc,
		activity: activity,
		log:      log,
		now:      time.Now,
	}
}

// validate checks the request and normalizes it in place. It returns the
// message for a 400, or "" when the request is usable.
func (h *EventHandler) validate(req *EventRequest) string {
	if req.Title == "" || req.Description == "" || req.Date == "" || req.Time == "" || req.Location == "" {
		return msgRequired
	}

	if req.Type == "" {
		req.Type = models.EventTypeEenmalig
	}
	if !req.Type.IsValid() {
		return msgEventInvalidType
	}

	req.Date = agenda.FormatDateForInput(req.Date, h.loc)
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return msgEventInvalidDate
	}

	for _, d := range req.RecurringDays {
		if d < 0 || d > 6 {
			return msgEventInvalidDays
		}
	}
	if req.RecurringDayOfWeek != nil && (*req.RecurringDayOfWeek < 0 || *req.RecurringDayOfWeek > 6) {
		return msgEventInvalidDays
	}

	if req.Zaal != "" && !h.site.HasRoom(req.Zaal) {
		return msgUnknownRoom
	}

	if req.StartTime == "" {
		req.StartTime = req.Time
	}
	return ""
}

func (req *EventRequest) apply(e *models.Event) {
	e.Title = req.Title
	e.Description = req.Description
	e.Type = req.Type
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.Time = req.Time
	e.Location = req.Location
	e.Zaal = req.Zaal
	e.Date = req.Date
	e.RecurringDays = req.RecurringDays
	e.RecurringWeeks = req.RecurringWeeks
	e.RecurringDayOfWeek = req.RecurringDayOfWeek
	e.RecurringID = req.RecurringID
}

// GetEvents lists every event by date, then time.
func (h *EventHandler) GetEvents(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		serverError(c, h.log, err, msgEventFetch)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgRequired)
		return
	}
	if msg := h.validate(&req); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	s := middleware.Session(c)
	now := h.now()
	event := models.Event{
		Author:    s.DisplayName(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.apply(&event)

	ctx := c.Request.Context()
	if err := h.events.Insert(ctx, &event); err != nil {
		serverError(c, h.log, err, msgEventSave)
		return
	}

	h.activity.Record(ctx, s, models.ActivityCreate, models.EntityEvent, event.ID, event.DisplayName())

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgEventNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgEventFetch)
		return
	}
	c.JSON(http.StatusOK, event)
}

// UpdateEvent replaces the whole event. Id, author, series link and
// creation time are kept from the stored document.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	ctx := c.Request.Context()
	existing, err := h.events.Get(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgEventNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgEventSave)
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgRequired)
		return
	}
	if msg := h.validate(&req); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	updated := models.Event{
		ID:        existing.ID,
		Author:    existing.Author,
		SeriesID:  existing.SeriesID,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: h.now(),
	}
	req.apply(&updated)

	if err := h.events.Replace(ctx, &updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgEventNotFound)
			return
		}
		serverError(c, h.log, err, msgEventSave)
		return
	}

	h.activity.Record(ctx, middleware.Session(c), models.ActivityUpdate, models.EntityEvent, updated.ID, updated.DisplayName())

	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	existing, err := h.events.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgEventNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgEventDelete)
		return
	}

	if err := h.events.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgEventNotFound)
			return
		}
		serverError(c, h.log, err, msgEventDelete)
		return
	}

	h.activity.Record(ctx, middleware.Session(c), models.ActivityDelete, models.EntityEvent, existing.ID, existing.DisplayName())

	c.JSON(http.StatusOK, gin.H{"message": msgEventDeleted})
}
