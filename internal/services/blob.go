package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path"
	"time"

	"stichting-asha/internal/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/zeebo/blake3"
)

// BlobStore turns uploaded bytes into an attachment.
type BlobStore interface {
	Put(ctx context.Context, filename, contentType string, data []byte) (*models.Attachment, error)
	Delete(ctx context.Context, a *models.Attachment) error
}

// ContentKey is the BLAKE3-256 hex digest of data.
func ContentKey(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// InlineStore keeps attachments base64 encoded inside the document.
type InlineStore struct{}

func NewInlineStore() *InlineStore {
	return &InlineStore{}
}

func (InlineStore) Put(_ context.Context, filename, contentType string, data []byte) (*models.Attachment, error) {
	return &models.Attachment{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        base64.StdEncoding.EncodeToString(data),
		Key:         ContentKey(data),
	}, nil
}

func (InlineStore) Delete(context.Context, *models.Attachment) error {
	return nil
}

type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore uploads attachments to Cloudinary under their content
// key, so the same file uploaded twice maps to one asset.
type CloudinaryStore struct {
	api    cloudinaryAPI
	folder string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryStore{api: &cld.Upload, folder: folder}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, filename, contentType string, data []byte) (*models.Attachment, error) {
	key := ContentKey(data)

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	result, err := s.api.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     key,
		Folder:       s.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("upload %s: %s", filename, result.Error.Message)
	}

	return &models.Attachment{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Key:         key,
		URL:         result.SecureURL,
	}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, a *models.Attachment) error {
	if a == nil || a.Key == "" || a.URL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.api.Destroy(ctx, uploader.DestroyParams{
		PublicID: path.Join(s.folder, a.Key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", a.Filename, err)
	}
	return nil
}
