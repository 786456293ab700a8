package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"stichting-asha/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgUploadNoFile = "Geen bestand ontvangen."
	msgUploadFailed = "Upload is mislukt."
	msgUploadReady  = "Bestand gereed voor opslag"
)

type UploadHandler struct {
	blobs services.BlobStore
	log   logrus.FieldLogger
}

type UploadResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Data        string `json:"data,omitempty"`
	Key         string `json:"key"`
	URL         string `json:"url,omitempty"`
	Message     string `json:"message"`
}

func NewUploadHandler(blobs services.BlobStore, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{blobs: blobs, log: log}
}

// Upload stores the multipart field "file" and describes the result. The
// caller attaches it to a document in a later request.
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, msgUploadNoFile)
		return
	}

	data, contentType, err := readFormFile(fh)
	if errors.Is(err, errInvalidAttachment) {
		respondError(c, http.StatusBadRequest, msgInvalidFile)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgUploadFailed)
		return
	}

	attachment, err := h.blobs.Put(c.Request.Context(), filepath.Base(fh.Filename), contentType, data)
	if err != nil {
		serverError(c, h.log, err, msgUploadFailed)
		return
	}

	h.log.WithFields(logrus.Fields{
		"filename": attachment.Filename,
		"size":     attachment.Size,
		"key":      attachment.Key,
	}).Info("file uploaded")

	c.JSON(http.StatusOK, UploadResponse{
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		Size:        attachment.Size,
		Data:        attachment.Data,
		Key:         attachment.Key,
		URL:         attachment.URL,
		Message:     msgUploadReady,
	})
}
