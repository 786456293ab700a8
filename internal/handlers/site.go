package handlers

import (
	"context"
	"net/http"
	"time"

	"stichting-asha/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// SiteHandler serves static site information and the health probes.
type SiteHandler struct {
	site    *config.Site
	db      Pinger
	log     logrus.FieldLogger
	started time.Time
	version string
	clients func() int
}

func NewSiteHandler(site *config.Site, db Pinger, version string, clients func() int, log logrus.FieldLogger) *SiteHandler {
	return &SiteHandler{
		site:    site,
		db:      db,
		log:     log,
		started: time.Now(),
		version: version,
		clients: clients,
	}
}

// GetSite returns the contact persons and bookable rooms.
func (h *SiteHandler) GetSite(c *gin.Context) {
	c.JSON(http.StatusOK, h.site)
}

func (h *SiteHandler) Health(c *gin.Context) {
	stats := gin.H{}
	if h.clients != nil {
		stats["websocket_connections"] = h.clients()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(h.started).String(),
		"version":   h.version,
		"stats":     stats,
	})
}

// Ready reports whether the database answers.
func (h *SiteHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
