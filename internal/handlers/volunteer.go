package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"
	"stichting-asha/internal/services"
	"stichting-asha/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgVolunteerNotFound  = "Vrijwilliger niet gevonden"
	msgVolunteerDuplicate = "Dit e-mailadres is al gebruikt voor een aanmelding."
	msgVolunteerAction    = "Ongeldige actie"
	msgVolunteerStatus    = "Ongeldige status"
	msgVolunteerFiles     = "CV en motivatiebrief zijn verplicht (pdf, doc of docx)"
	msgVolunteerFileType  = "Ongeldig bestandstype"
	msgVolunteerFileEmpty = "Bestand niet gevonden"
	msgVolunteerFetch     = "Fout bij het ophalen van vrijwilligers"
	msgVolunteerSave      = "Fout bij het verwerken van de aanmelding"
	msgVolunteerDelete    = "Fout bij het verwijderen van de vrijwilliger"
	msgVolunteerApplied   = "Aanmelding ontvangen"
	msgVolunteerDeleted   = "Vrijwilliger verwijderd"
)

// MaxAttachmentSize bounds a single uploaded file.
const MaxAttachmentSize = 10 << 20

var applicationExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

type DecisionMailer interface {
	SendVolunteerDecision(ctx context.Context, v *models.Volunteer) error
}

type VolunteerHandler struct {
	volunteers VolunteerRepository
	blobs      services.BlobStore
	mailer     DecisionMailer
	activity   ActivityRecorder
	log        logrus.FieldLogger
	now        func() time.Time
}

// ApplicationForm is the public sign-up form. Files are read separately.
type ApplicationForm struct {
	FirstName   string `form:"firstName" binding:"required"`
	LastName    string `form:"lastName" binding:"required"`
	Email       string `form:"email" binding:"required,email"`
	PhoneNumber string `form:"phoneNumber" binding:"required"`
	Message     string `form:"message" binding:"required"`
}

type DecisionRequest struct {
	Action string `json:"action"`
}

type fileResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        string `json:"data,omitempty"`
	URL         string `json:"url,omitempty"`
}

func NewVolunteerHandler(volunteers VolunteerRepository, blobs services.BlobStore, mailer DecisionMailer, activity ActivityRecorder, log logrus.FieldLogger) *VolunteerHandler {
	return &VolunteerHandler{
		volunteers: volunteers,
		blobs:      blobs,
		mailer:     mailer,
		activity:   activity,
		log:        log,
		now:        time.Now,
	}
}

// readFormFile reads one uploaded file into memory.
func readFormFile(fh *multipart.FileHeader) ([]byte, string, error) {
	if fh.Size > MaxAttachmentSize {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", errInvalidAttachment, fh.Filename, MaxAttachmentSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxAttachmentSize+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 || len(data) > MaxAttachmentSize {
		return nil, "", fmt.Errorf("%w: %s", errInvalidAttachment, fh.Filename)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func (h *VolunteerHandler) storeFormFile(c *gin.Context, field string) (*models.Attachment, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %s", errInvalidAttachment, field)
	}
	if !applicationExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		return nil, fmt.Errorf("%w: %s has an unsupported extension", errInvalidAttachment, fh.Filename)
	}
	data, contentType, err := readFormFile(fh)
	if err != nil {
		return nil, err
	}
	return h.blobs.Put(c.Request.Context(), filepath.Base(fh.Filename), contentType, data)
}

// Apply registers a public volunteer application as pending.
func (h *VolunteerHandler) Apply(c *gin.Context) {
	var form ApplicationForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, http.StatusBadRequest, msgRequired)
		return
	}

	form.Email = store.NormalizeEmail(form.Email)

	ctx := c.Request.Context()
	exists, err := h.volunteers.ExistsByEmail(ctx, form.Email)
	if err != nil {
		serverError(c, h.log, err, msgVolunteerSave)
		return
	}
	if exists {
		respondError(c, http.StatusConflict, msgVolunteerDuplicate)
		return
	}

	cv, err := h.storeFormFile(c, "cv")
	if err != nil {
		h.fileError(c, err)
		return
	}
	letter, err := h.storeFormFile(c, "motivationLetter")
	if err != nil {
		removeAttachments(ctx, h.blobs, h.log, cv)
		h.fileError(c, err)
		return
	}

	now := h.now()
	volunteer := models.Volunteer{
		FirstName:        strings.TrimSpace(form.FirstName),
		LastName:         strings.TrimSpace(form.LastName),
		Email:            form.Email,
		PhoneNumber:      form.PhoneNumber,
		Message:          form.Message,
		CV:               cv,
		MotivationLetter: letter,
		Status:           models.VolunteerPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.volunteers.Insert(ctx, &volunteer); err != nil {
		removeAttachments(ctx, h.blobs, h.log, cv, letter)
		// the unique index catches concurrent applications
		if errors.Is(err, store.ErrDuplicate) {
			respondError(c, http.StatusConflict, msgVolunteerDuplicate)
			return
		}
		serverError(c, h.log, err, msgVolunteerSave)
		return
	}

	h.activity.Record(ctx, nil, models.ActivityCreate, models.EntityVolunteer, volunteer.ID.Hex(), volunteer.FullName())

	c.JSON(http.StatusCreated, gin.H{"message": msgVolunteerApplied, "id": volunteer.ID})
}

func (h *VolunteerHandler) fileError(c *gin.Context, err error) {
	if errors.Is(err, errInvalidAttachment) {
		respondError(c, http.StatusBadRequest, msgVolunteerFiles)
		return
	}
	serverError(c, h.log, err, msgVolunteerSave)
}

// GetVolunteers lists applications without file contents.
func (h *VolunteerHandler) GetVolunteers(c *gin.Context) {
	status := c.DefaultQuery("status", "all")
	if status != "all" && !models.VolunteerStatus(status).IsValid() {
		respondError(c, http.StatusBadRequest, msgVolunteerStatus)
		return
	}

	volunteers, err := h.volunteers.List(c.Request.Context(), status)
	if err != nil {
		serverError(c, h.log, err, msgVolunteerFetch)
		return
	}
	c.JSON(http.StatusOK, volunteers)
}

func (h *VolunteerHandler) GetVolunteer(c *gin.Context) {
	volunteer, ok := h.load(c, msgVolunteerFetch)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, volunteer)
}

// GetFile returns one attachment of an application.
func (h *VolunteerHandler) GetFile(c *gin.Context) {
	kind := c.Query("type")
	if kind != "cv" && kind != "motivationLetter" {
		respondError(c, http.StatusBadRequest, msgVolunteerFileType)
		return
	}

	volunteer, ok := h.load(c, msgVolunteerFetch)
	if !ok {
		return
	}

	file := volunteer.File(kind)
	if file == nil {
		respondError(c, http.StatusNotFound, msgVolunteerFileEmpty)
		return
	}

	c.JSON(http.StatusOK, fileResponse{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Data:        file.Data,
		URL:         file.URL,
	})
}

// Decide approves or rejects an application. Any application can be
// decided again.
func (h *VolunteerHandler) Decide(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgVolunteerAction)
		return
	}
	status, ok := models.StatusForAction(req.Action)
	if !ok {
		respondError(c, http.StatusBadRequest, msgVolunteerAction)
		return
	}

	ctx := c.Request.Context()
	volunteer, err := h.volunteers.SetStatus(ctx, c.Param("id"), status)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgVolunteerNotFound)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgVolunteerSave)
		return
	}

	if err := h.mailer.SendVolunteerDecision(ctx, volunteer); err != nil {
		h.log.WithError(err).WithField("volunteer_id", volunteer.ID.Hex()).Warn("failed to send decision mail")
	}

	h.activity.Record(ctx, middleware.Session(c), models.ActivityUpdate, models.EntityVolunteer, volunteer.ID.Hex(), volunteer.FullName())

	c.JSON(http.StatusOK, volunteer)
}

func (h *VolunteerHandler) DeleteVolunteer(c *gin.Context) {
	volunteer, ok := h.load(c, msgVolunteerDelete)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.volunteers.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgVolunteerNotFound)
			return
		}
		serverError(c, h.log, err, msgVolunteerDelete)
		return
	}
	removeAttachments(ctx, h.blobs, h.log, volunteer.CV, volunteer.MotivationLetter)

	h.activity.Record(ctx, middleware.Session(c), models.ActivityDelete, models.EntityVolunteer, volunteer.ID.Hex(), volunteer.FullName())

	c.JSON(http.StatusOK, gin.H{"message": msgVolunteerDeleted})
}

// load fetches the volunteer named by the id parameter and answers the
// request itself on failure.
func (h *VolunteerHandler) load(c *gin.Context, failure string) (*models.Volunteer, bool) {
	volunteer, err := h.volunteers.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, msgVolunteerNotFound)
		return nil, false
	}
	if err != nil {
		serverError(c, h.log, err, failure)
		return nil, false
	}
	return volunteer, true
}
