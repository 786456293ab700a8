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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgProjectNotFound = "Project niet gevonden"
	msgProjectRequired = "Titel en beschrijving zijn verplicht"
	msgProjectDate     = "Ongeldige projectdatum"
	msgProjectFetch    = "Fout bij het ophalen van projecten"
	msgProjectSave     = "Fout bij het opslaan van het project"
	msgProjectDelete   = "Fout bij het verwijderen van het project"
	msgProjectDeleted  = "Project verwijderd"
)

type ProjectHandler struct {
	projects ProjectRepository
	blobs    services.BlobStore
	activity ActivityRecorder
	log      logrus.FieldLogger
	now      func() time.Time
}

// ProjectRequest is used for both create and update. On update, absent
// optional fields keep their stored value.
type ProjectRequest struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	LongDescription *string          `json:"longDescription"`
	ProjectDate     string           `json:"projectDate"`
	Tags            []string         `json:"tags"`
	Image           *AttachmentInput `json:"image"`
	Document        *AttachmentInput `json:"document"`
}

func NewProjectHandler(projects ProjectRepository, blobs services.BlobStore, activity ActivityRecorder, log logrus.FieldLogger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		blobs:    blobs,
		activity: activity,
		log:      log,
		now:      time.Now,
	}
}

func parseProjectDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (h *ProjectHandler) GetProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		serverError(c, h.log, err, msgProjectFetch)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgProjectNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgProjectFetch)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Description == "" {
		respondError(c, http.StatusBadRequest, msgProjectRequired)
		return
	}

	s := middleware.Session(c)
	now := h.now()
	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		ProjectDate: now,
		Author:      s.DisplayName(),
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status, msg := h.apply(c.Request.Context(), &req, &project); status != 0 {
		respondError(c, status, msg)
		return
	}

	ctx := c.Request.Context()
	if err := h.projects.Insert(ctx, &project); err != nil {
		removeAttachments(ctx, h.blobs, h.log, project.Image, project.Document)
		serverError(c, h.log, err, msgProjectSave)
		return
	}

	h.activity.Record(ctx, s, models.ActivityCreate, models.EntityProject, project.ID.Hex(), project.Title)

	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Description == "" {
		respondError(c, http.StatusBadRequest, msgProjectRequired)
		return
	}

	project, err := h.projects.Get(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgProjectNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgProjectSave)
		return
	}

	oldImage, oldDocument := project.Image, project.Document
	project.Title = req.Title
	project.Description = req.Description
	project.UpdatedAt = h.now()
	if status, msg := h.apply(ctx, &req, project); status != 0 {
		respondError(c, status, msg)
		return
	}

	if err := h.projects.Replace(ctx, project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgProjectNotFound)
			return
		}
		serverError(c, h.log, err, msgProjectSave)
		return
	}
	removeAttachments(ctx, h.blobs, h.log, replaced(oldImage, project.Image), replaced(oldDocument, project.Document))

	h.activity.Record(ctx, middleware.Session(c), models.ActivityUpdate, models.EntityProject, project.ID.Hex(), project.Title)

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	project, err := h.projects.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgProjectNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgProjectDelete)
		return
	}

	if err := h.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgProjectNotFound)
			return
		}
		serverError(c, h.log, err, msgProjectDelete)
		return
	}
	removeAttachments(ctx, h.blobs, h.log, project.Image, project.Document)

	h.activity.Record(ctx, middleware.Session(c), models.ActivityDelete, models.EntityProject, project.ID.Hex(), project.Title)

	c.JSON(http.StatusOK, gin.H{"message": msgProjectDeleted})
}

// apply copies the optional fields of req onto p and stores new
// attachments. It returns a non-zero status when the request is rejected.
func (h *ProjectHandler) apply(ctx context.Context, req *ProjectRequest, p *models.Project) (int, string) {
	if req.LongDescription != nil {
		p.LongDescription = *req.LongDescription
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	if req.ProjectDate != "" {
		date, err := parseProjectDate(req.ProjectDate)
		if err != nil {
			return http.StatusBadRequest, msgProjectDate
		}
		p.ProjectDate = date
	}

	image, err := storeAttachment(ctx, h.blobs, req.Image)
	if err != nil {
		return h.attachmentStatus(err)
	}
	document, err := storeAttachment(ctx, h.blobs, req.Document)
	if err != nil {
		removeAttachments(ctx, h.blobs, h.log, image)
		return h.attachmentStatus(err)
	}
	if image != nil {
		p.Image = image
	}
	if document != nil {
		p.Document = document
	}
	return 0, ""
}

func (h *ProjectHandler) attachmentStatus(err error) (int, string) {
	if errors.Is(err, errInvalidAttachment) {
		return http.StatusBadRequest, msgInvalidFile
	}
	h.log.WithError(err).Error("attachment upload failed")
	return http.StatusInternalServerError, msgProjectSave
}

// replaced returns old when it is no longer referenced by current.
func replaced(old, current *models.Attachment) *models.Attachment {
	if old == nil || current == nil || old == current {
		return nil
	}
	if old.Key != "" && old.Key == current.Key {
		return nil
	}
	return old
}
