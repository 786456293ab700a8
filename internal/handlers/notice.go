package handlers

import (
	"errors"
	"net/http"
	"time"

	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"
	"stichting-asha/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgNoticeNotFound = "Mededeling niet gevonden"
	msgNoticeRequired = "Titel, bericht en vervaldatum zijn verplicht"
	msgNoticeRole     = "Ongeldige rol"
	msgNoticeExpiry   = "Ongeldige vervaldatum"
	msgNoticeFetch    = "Fout bij het ophalen van mededelingen"
	msgNoticeSave     = "Fout bij het opslaan van de mededeling"
	msgNoticeDelete   = "Fout bij het verwijderen van de mededeling"
	msgNoticeDeleted  = "Mededeling verwijderd"
)

type NoticeHandler struct {
	notices  NoticeRepository
	activity ActivityRecorder
	log      logrus.FieldLogger
	now      func() time.Time
}

type NoticeRequest struct {
	Title          string   `json:"title" binding:"required"`
	Message        string   `json:"message" binding:"required"`
	Roles          []string `json:"roles"`
	ExpirationDate string   `json:"expirationDate" binding:"required"`
	IsActive       *bool    `json:"isActive"`
}

func NewNoticeHandler(notices NoticeRepository, activity ActivityRecorder, log logrus.FieldLogger) *NoticeHandler {
	return &NoticeHandler{notices: notices, activity: activity, log: log, now: time.Now}
}

// parseExpiration accepts a timestamp or a bare date. A bare date expires
// at the end of that day in UTC.
func parseExpiration(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(24*time.Hour - time.Second), nil
}

func (req *NoticeRequest) apply(n *models.Notice) string {
	expires, err := parseExpiration(req.ExpirationDate)
	if err != nil {
		return msgNoticeExpiry
	}
	roles := []string{}
	for _, r := range req.Roles {
		if _, ok := models.RoleFromString(r); !ok {
			return msgNoticeRole
		}
		roles = append(roles, r)
	}

	n.Title = req.Title
	n.Message = req.Message
	n.Roles = roles
	n.ExpirationDate = expires
	if req.IsActive != nil {
		n.IsActive = *req.IsActive
	}
	return ""
}

// GetLatest returns the newest notice the caller may see, or null.
func (h *NoticeHandler) GetLatest(c *gin.Context) {
	now := h.now()
	notices, err := h.notices.Active(c.Request.Context(), now)
	if err != nil {
		serverError(c, h.log, err, msgNoticeFetch)
		return
	}

	var role models.Role
	if s := middleware.Session(c); s != nil {
		role = s.Role
	}
	for i := range notices {
		if notices[i].VisibleTo(role, now) {
			c.JSON(http.StatusOK, notices[i])
			return
		}
	}
	c.JSON(http.StatusOK, nil)
}

func (h *NoticeHandler) GetNotices(c *gin.Context) {
	notices, err := h.notices.List(c.Request.Context())
	if err != nil {
		serverError(c, h.log, err, msgNoticeFetch)
		return
	}
	c.JSON(http.StatusOK, notices)
}

func (h *NoticeHandler) CreateNotice(c *gin.Context) {
	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgNoticeRequired)
		return
	}

	s := middleware.Session(c)
	now := h.now()
	notice := models.Notice{
		Author:    s.DisplayName(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if msg := req.apply(&notice); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	ctx := c.Request.Context()
	if err := h.notices.Insert(ctx, &notice); err != nil {
		serverError(c, h.log, err, msgNoticeSave)
		return
	}

	h.activity.Record(ctx, s, models.ActivityCreate, models.EntityNotice, notice.ID.Hex(), notice.Title)

	c.JSON(http.StatusCreated, notice)
}

func (h *NoticeHandler) UpdateNotice(c *gin.Context) {
	ctx := c.Request.Context()

	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgNoticeRequired)
		return
	}

	notice, err := h.notices.Get(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgNoticeNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgNoticeSave)
		return
	}

	if msg := req.apply(notice); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}
	notice.UpdatedAt = h.now()

	if err := h.notices.Replace(ctx, notice); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgNoticeNotFound)
			return
		}
		serverError(c, h.log, err, msgNoticeSave)
		return
	}

	h.activity.Record(ctx, middleware.Session(c), models.ActivityUpdate, models.EntityNotice, notice.ID.Hex(), notice.Title)

	c.JSON(http.StatusOK, notice)
}

func (h *NoticeHandler) DeleteNotice(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	notice, err := h.notices.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgNoticeNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgNoticeDelete)
		return
	}

	if err := h.notices.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgNoticeNotFound)
			return
		}
		serverError(c, h.log, err, msgNoticeDelete)
		return
	}

	h.activity.Record(ctx, middleware.Session(c), models.ActivityDelete, models.EntityNotice, notice.ID.Hex(), notice.Title)

	c.JSON(http.StatusOK, gin.H{"message": msgNoticeDeleted})
}
