package handlers

import (
	"bytes"
	"net/http"
	"time"

	"stichting-asha/internal/agenda"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const msgAgendaFetch = "Fout bij het ophalen van de agenda"

// AgendaHandler serves the grouped public agenda and its iCalendar feed.
type AgendaHandler struct {
	events EventRepository
	loc    *time.Location
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAgendaHandler(events EventRepository, loc *time.Location, log logrus.FieldLogger) *AgendaHandler {
	return &AgendaHandler{events: events, loc: loc, log: log, now: time.Now}
}

// GetAgenda returns the events folded into recurring groups.
func (h *AgendaHandler) GetAgenda(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		serverError(c, h.log, err, msgAgendaFetch)
		return
	}

	agenda.Normalize(events, h.loc)
	c.JSON(http.StatusOK, agenda.GroupEvents(events))
}

func (h *AgendaHandler) ExportICS(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		serverError(c, h.log, err, msgAgendaFetch)
		return
	}
	agenda.Normalize(events, h.loc)

	var buf bytes.Buffer
	if err := agenda.WriteICS(&buf, events, h.loc, h.now()); err != nil {
		serverError(c, h.log, err, msgAgendaFetch)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="agenda.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}
