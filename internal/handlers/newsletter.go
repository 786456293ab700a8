package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"
	"stichting-asha/internal/services"
	"stichting-asha/internal/store"
	"stichting-asha/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgNewsletterNotFound = "Nieuwsbrief niet gevonden"
	msgNewsletterRequired = "Titel, beschrijving en type zijn verplicht"
	msgNewsletterVideo    = "Geen geldige YouTube-link gevonden"
	msgNewsletterFetch    = "Fout bij het ophalen van nieuwsbrieven"
	msgNewsletterSave     = "Fout bij het opslaan van de nieuwsbrief"
	msgNewsletterDelete   = "Fout bij het verwijderen van de nieuwsbrief"
	msgNewsletterDeleted  = "Nieuwsbrief verwijderd"
)

type NewsletterHandler struct {
	posts    NewsletterRepository
	blobs    services.BlobStore
	activity ActivityRecorder
	log      logrus.FieldLogger
	now      func() time.Time
}

type NewsletterRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Type        string           `json:"type" binding:"required,oneof=article video"`
	Content     string           `json:"content"`
	Link        string           `json:"link"`
	VideoURL    string           `json:"videoUrl"`
	Image       *AttachmentInput `json:"image"`
}

func NewNewsletterHandler(posts NewsletterRepository, blobs services.BlobStore, activity ActivityRecorder, log logrus.FieldLogger) *NewsletterHandler {
	return &NewsletterHandler{
		posts:    posts,
		blobs:    blobs,
		activity: activity,
		log:      log,
		now:      time.Now,
	}
}

// GetPosts lists posts. sort is createdAt or title, order asc or desc;
// the default is newest first.
func (h *NewsletterHandler) GetPosts(c *gin.Context) {
	field := c.DefaultQuery("sort", "createdAt")
	ascending := c.Query("order") == "asc"

	posts, err := h.posts.List(c.Request.Context(), field, ascending)
	if err != nil {
		serverError(c, h.log, err, msgNewsletterFetch)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *NewsletterHandler) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgNewsletterNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgNewsletterFetch)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *NewsletterHandler) CreatePost(c *gin.Context) {
	var req NewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgNewsletterRequired)
		return
	}

	s := middleware.Session(c)
	now := h.now()
	post := models.NewsletterPost{
		Author:    s.DisplayName(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx := c.Request.Context()
	if status, msg := h.apply(ctx, &req, &post); status != 0 {
		respondError(c, status, msg)
		return
	}

	if err := h.posts.Insert(ctx, &post); err != nil {
		removeAttachments(ctx, h.blobs, h.log, post.Image)
		serverError(c, h.log, err, msgNewsletterSave)
		return
	}

	h.activity.Record(ctx, s, models.ActivityCreate, models.EntityNewsletter, post.ID.Hex(), post.Title)

	c.JSON(http.StatusCreated, post)
}

func (h *NewsletterHandler) UpdatePost(c *gin.Context) {
	ctx := c.Request.Context()

	var req NewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgNewsletterRequired)
		return
	}

	post, err := h.posts.Get(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgNewsletterNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgNewsletterSave)
		return
	}

	oldImage := post.Image
	if status, msg := h.apply(ctx, &req, post); status != 0 {
		respondError(c, status, msg)
		return
	}
	post.UpdatedAt = h.now()

	if err := h.posts.Replace(ctx, post); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgNewsletterNotFound)
			return
		}
		serverError(c, h.log, err, msgNewsletterSave)
		return
	}
	removeAttachments(ctx, h.blobs, h.log, replaced(oldImage, post.Image))

	h.activity.Record(ctx, middleware.Session(c), models.ActivityUpdate, models.EntityNewsletter, post.ID.Hex(), post.Title)

	c.JSON(http.StatusOK, post)
}

func (h *NewsletterHandler) DeletePost(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	post, err := h.posts.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgNewsletterNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgNewsletterDelete)
		return
	}

	if err := h.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgNewsletterNotFound)
			return
		}
		serverError(c, h.log, err, msgNewsletterDelete)
		return
	}
	removeAttachments(ctx, h.blobs, h.log, post.Image)

	h.activity.Record(ctx, middleware.Session(c), models.ActivityDelete, models.EntityNewsletter, post.ID.Hex(), post.Title)

	c.JSON(http.StatusOK, gin.H{"message": msgNewsletterDeleted})
}

// apply renders the Markdown body, resolves the video id and stores a new
// image. Video posts must point at YouTube.
func (h *NewsletterHandler) apply(ctx context.Context, req *NewsletterRequest, p *models.NewsletterPost) (int, string) {
	html, err := services.RenderMarkdown(req.Content)
	if err != nil {
		h.log.WithError(err).Error("failed to render newsletter content")
		return http.StatusInternalServerError, msgNewsletterSave
	}

	var videoID string
	if req.Type == models.NewsletterVideo {
		videoID = utils.VideoID(req.VideoURL, req.Link)
		if videoID == "" {
			return http.StatusBadRequest, msgNewsletterVideo
		}
	}

	image, err := storeAttachment(ctx, h.blobs, req.Image)
	if errors.Is(err, errInvalidAttachment) {
		return http.StatusBadRequest, msgInvalidFile
	}
	if err != nil {
		h.log.WithError(err).Error("attachment upload failed")
		return http.StatusInternalServerError, msgNewsletterSave
	}

	p.Title = req.Title
	p.Description = req.Description
	p.Type = req.Type
	p.Content = req.Content
	p.ContentHTML = html
	p.Link = req.Link
	p.VideoURL = req.VideoURL
	p.VideoID = videoID
	if image != nil {
		p.Image = image
	}
	return 0, ""
}
