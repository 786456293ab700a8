package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"
	"stichting-asha/internal/services"
	"stichting-asha/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgGeneric        = "Er is iets misgegaan. Probeer het later opnieuw."
	msgRequired       = "Alle velden zijn verplicht"
	msgInvalidRequest = "Ongeldige gegevens"
	msgInvalidFile    = "Ongeldig bestand"
)

// ActivityRecorder appends best-effort dashboard activity.
type ActivityRecorder interface {
	Record(ctx context.Context, s *auth.Session, kind models.ActivityType, entityType, entityID, entityName string)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// serverError logs err and answers with a generic 500. Details never
// reach the client.
func serverError(c *gin.Context, log logrus.FieldLogger, err error, message string) {
	log.WithError(err).WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(middleware.RequestIDKey),
	}).Error("request failed")
	respondError(c, http.StatusInternalServerError, message)
}

// AttachmentInput is a file sent inline in a JSON body.
type AttachmentInput struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
	URL         string `json:"url"`
}

// errInvalidAttachment marks attachments rejected before reaching the
// blob store.
var errInvalidAttachment = errors.New("invalid attachment")

// decodeBase64 accepts plain base64 or a data: URI.
func decodeBase64(s string) ([]byte, string, error) {
	var contentType string
	if strings.HasPrefix(s, "data:") {
		comma := strings.Index(s, ",")
		if comma < 0 {
			return nil, "", errors.New("malformed data URI")
		}
		meta := strings.TrimPrefix(s[:comma], "data:")
		contentType = strings.TrimSuffix(meta, ";base64")
		s = s[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// storeAttachment turns an inline attachment into a stored one. A nil
// input yields nil. Inputs that already point at a URL are kept as is.
func storeAttachment(ctx context.Context, blobs services.BlobStore, in *AttachmentInput) (*models.Attachment, error) {
	if in == nil {
		return nil, nil
	}
	if in.Data == "" {
		if in.URL == "" {
			return nil, fmt.Errorf("%w: no data", errInvalidAttachment)
		}
		return &models.Attachment{Filename: in.Filename, ContentType: in.ContentType, URL: in.URL}, nil
	}

	data, uriType, err := decodeBase64(in.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidAttachment, err)
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = uriType
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return blobs.Put(ctx, in.Filename, contentType, data)
}

// removeAttachments deletes stored blobs. Failures are only logged.
func removeAttachments(ctx context.Context, blobs services.BlobStore, log logrus.FieldLogger, attachments ...*models.Attachment) {
	for _, a := range attachments {
		if a == nil {
			continue
		}
		if err := blobs.Delete(ctx, a); err != nil {
			log.WithError(err).WithField("key", a.Key).Warn("failed to delete attachment")
		}
	}
}
