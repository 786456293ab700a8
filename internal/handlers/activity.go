package handlers

import (
	"net/http"
	"strconv"

	"stichting-asha/internal/middleware"
	"stichting-asha/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 100
	msgActivityFetch     = "Fout bij het ophalen van activiteiten"
)

// LiveFeed attaches a websocket connection to the activity hub.
type LiveFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string) error
}

type ActivityHandler struct {
	activities ActivityRepository
	feed       LiveFeed
	log        logrus.FieldLogger
}

func NewActivityHandler(activities ActivityRepository, feed LiveFeed, log logrus.FieldLogger) *ActivityHandler {
	return &ActivityHandler{activities: activities, feed: feed, log: log}
}

// activityLimit reads ?limit=, clamped to 1..100. Anything unparsable
// gives the default.
func activityLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultActivityLimit
	}
	if n > maxActivityLimit {
		return maxActivityLimit
	}
	return n
}

// GetActivities returns the newest dashboard entries with their message.
func (h *ActivityHandler) GetActivities(c *gin.Context) {
	activities, err := h.activities.Recent(c.Request.Context(), activityLimit(c.Query("limit")))
	if err != nil {
		serverError(c, h.log, err, msgActivityFetch)
		return
	}

	views := make([]services.ActivityView, len(activities))
	for i := range activities {
		views[i] = services.ActivityView{Activity: activities[i], Message: activities[i].Message()}
	}
	c.JSON(http.StatusOK, views)
}

// Live upgrades to a websocket that receives new activity as it happens.
func (h *ActivityHandler) Live(c *gin.Context) {
	s := middleware.Session(c)
	if err := h.feed.Serve(c.Writer, c.Request, s.UserID); err != nil {
		// the upgrader has already written the response
		h.log.WithError(err).Warn("live feed upgrade failed")
	}
}
