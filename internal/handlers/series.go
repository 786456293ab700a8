package handlers

import (
	"context"
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
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgSeriesNotFound = "Reeks niet gevonden"
	msgSeriesInvalid  = "Ongeldig herhalingspatroon"
	msgSeriesFetch    = "Fout bij het ophalen van de reeks"
	msgSeriesSave     = "Fout bij het opslaan van de reeks"
	msgSeriesDelete   = "Fout bij het verwijderen van de reeks"
	msgSeriesDeleted  = "Reeks verwijderd"
)

// SeriesHandler manages recurring agenda items and their occurrences.
type SeriesHandler struct {
	series      SeriesRepository
	occurrences OccurrenceRepository
	site        *config.Site
	loc         *time.Location
	activity    ActivityRecorder
	log         logrus.FieldLogger
	now         func() time.Time
}

type SeriesRequest struct {
	Title              string           `json:"title" binding:"required"`
	Description        string           `json:"description" binding:"required"`
	Type               models.EventType `json:"type" binding:"required"`
	StartTime          string           `json:"startTime" binding:"required"`
	EndTime            string           `json:"endTime"`
	Location           string           `json:"location" binding:"required"`
	Zaal               string           `json:"zaal"`
	StartDate          string           `json:"startDate" binding:"required"`
	RecurringDays      []int            `json:"recurringDays"`
	RecurringWeeks     *int             `json:"recurringWeeks"`
	RecurringDayOfWeek *int             `json:"recurringDayOfWeek"`
	Count              int              `json:"count"`
}

// SeriesUpdateRequest carries the fields that are copied onto every
// occurrence. The schedule cannot be changed after creation.
type SeriesUpdateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location" binding:"required"`
	Zaal        string `json:"zaal"`
}

type seriesResponse struct {
	Series *models.Series `json:"series"`
	Events []models.Event `json:"events"`
}

func NewSeriesHandler(series SeriesRepository, occurrences OccurrenceRepository, site *config.Site, loc *time.Location, activity ActivityRecorder, log logrus.FieldLogger) *SeriesHandler {
	return &SeriesHandler{
		series:      series,
		occurrences: occurrences,
		site:        site,
		loc:         loc,
		activity:    activity,
		log:         log,
		now:         time.Now,
	}
}

func (h *SeriesHandler) CreateSeries(c *gin.Context) {
	var req SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgRequired)
		return
	}
	if !req.Type.IsRecurring() {
		respondError(c, http.StatusBadRequest, msgEventInvalidType)
		return
	}
	if req.Zaal != "" && !h.site.HasRoom(req.Zaal) {
		respondError(c, http.StatusBadRequest, msgUnknownRoom)
		return
	}

	s := middleware.Session(c)
	now := h.now()
	series := &models.Series{
		ID:                 primitive.NewObjectID().Hex(),
		Title:              req.Title,
		Description:        req.Description,
		Type:               req.Type,
		StartTime:          agenda.FormatTimeForInput(req.StartTime, h.loc),
		EndTime:            agenda.FormatTimeForInput(req.EndTime, h.loc),
		Location:           req.Location,
		Zaal:               req.Zaal,
		Author:             s.DisplayName(),
		StartDate:          agenda.FormatDateForInput(req.StartDate, h.loc),
		RecurringDays:      req.RecurringDays,
		RecurringWeeks:     req.RecurringWeeks,
		RecurringDayOfWeek: req.RecurringDayOfWeek,
		Count:              req.Count,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	events, err := agenda.Materialize(series, now)
	if err != nil {
		h.log.WithError(err).WithField("type", req.Type).Debug("rejected series schedule")
		respondError(c, http.StatusBadRequest, msgSeriesInvalid)
		return
	}

	ctx := c.Request.Context()
	if err := h.series.Insert(ctx, series); err != nil {
		serverError(c, h.log, err, msgSeriesSave)
		return
	}
	if err := h.occurrences.InsertMany(ctx, events); err != nil {
		// an ordered insert keeps the events written before the failure
		h.rollback(context.WithoutCancel(ctx), series.ID)
		serverError(c, h.log, err, msgSeriesSave)
		return
	}

	h.activity.Record(ctx, s, models.ActivityCreate, models.EntitySeries, series.ID, series.Title)

	c.JSON(http.StatusCreated, seriesResponse{Series: series, Events: events})
}

// rollback removes a half-created series and whatever occurrences made it
// into the store.
func (h *SeriesHandler) rollback(ctx context.Context, id string) {
	log := h.log.WithField("series_id", id)
	if _, err := h.occurrences.DeleteSeries(ctx, id); err != nil {
		log.WithError(err).Warn("failed to roll back series events")
	}
	if err := h.series.Delete(ctx, id); err != nil {
		log.WithError(err).Warn("failed to roll back series")
	}
}

func (h *SeriesHandler) GetSeries(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	series, err := h.series.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgSeriesNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgSeriesFetch)
		return
	}

	events, err := h.occurrences.ListBySeries(ctx, series.ID)
	if err != nil {
		serverError(c, h.log, err, msgSeriesFetch)
		return
	}

	c.JSON(http.StatusOK, seriesResponse{Series: series, Events: events})
}

// UpdateSeries changes the series and copies the shared fields onto all
// of its occurrences.
func (h *SeriesHandler) UpdateSeries(c *gin.Context) {
	ctx := c.Request.Context()

	series, err := h.series.Get(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgSeriesNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgSeriesSave)
		return
	}

	var req SeriesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgRequired)
		return
	}
	if req.Zaal != "" && !h.site.HasRoom(req.Zaal) {
		respondError(c, http.StatusBadRequest, msgUnknownRoom)
		return
	}

	series.Title = req.Title
	series.Description = req.Description
	series.StartTime = agenda.FormatTimeForInput(req.StartTime, h.loc)
	series.EndTime = agenda.FormatTimeForInput(req.EndTime, h.loc)
	series.Location = req.Location
	series.Zaal = req.Zaal
	series.UpdatedAt = h.now()

	if err := h.series.Replace(ctx, series); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgSeriesNotFound)
			return
		}
		serverError(c, h.log, err, msgSeriesSave)
		return
	}

	updated, err := h.occurrences.UpdateSeries(ctx, series.ID, series.Shared())
	if err != nil {
		serverError(c, h.log, err, msgSeriesSave)
		return
	}
	h.log.WithFields(logrus.Fields{"series_id": series.ID, "occurrences": updated}).Debug("series propagated")

	events, err := h.occurrences.ListBySeries(ctx, series.ID)
	if err != nil {
		serverError(c, h.log, err, msgSeriesFetch)
		return
	}

	h.activity.Record(ctx, middleware.Session(c), models.ActivityUpdate, models.EntitySeries, series.ID, series.Title)

	c.JSON(http.StatusOK, seriesResponse{Series: series, Events: events})
}

// DeleteSeries removes the occurrences first so a failure never leaves
// orphaned events pointing at a deleted series.
func (h *SeriesHandler) DeleteSeries(c *gin.Context) {
	ctx := c.Request.Context()

	series, err := h.series.Get(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgSeriesNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgSeriesDelete)
		return
	}

	deleted, err := h.occurrences.DeleteSeries(ctx, series.ID)
	if err != nil {
		serverError(c, h.log, err, msgSeriesDelete)
		return
	}
	if err := h.series.Delete(ctx, series.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		serverError(c, h.log, err, msgSeriesDelete)
		return
	}

	h.activity.Record(ctx, middleware.Session(c), models.ActivityDelete, models.EntitySeries, series.ID, series.Title)

	c.JSON(http.StatusOK, gin.H{"message": msgSeriesDeleted, "deletedEvents": deleted})
}
