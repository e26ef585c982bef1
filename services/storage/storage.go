package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrDisabled is returned when no media backend is configured.
var ErrDisabled = errors.New("media storage is not configured")

// StorageService stores profile pictures.
type StorageService interface {
	// UploadAvatar stores the image under the actor's id and returns a public HTTPS URL.
	UploadAvatar(ctx context.Context, actorID string, file io.Reader) (string, error)
}

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage builds a client from a cloudinary:// URL.
func NewCloudinaryStorage(cloudinaryURL string) (*CloudinaryStorage, error) {
	if cloudinaryURL == "" {
		return nil, ErrDisabled
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid cloudinary url: %w", err)
	}
	return &CloudinaryStorage{cld: cld, folder: "fixit/avatars"}, nil
}

func (s *CloudinaryStorage) UploadAvatar(ctx context.Context, actorID string, file io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     actorID,
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	}
	result, err := s.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", fmt.Errorf("storage: failed to upload avatar: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("storage: cloudinary rejected upload: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("storage: no URL returned")
	}
	return result.SecureURL, nil
}

// DisabledStorage rejects every upload.
type DisabledStorage struct{}

func (DisabledStorage) UploadAvatar(context.Context, string, io.Reader) (string, error) {
	return "", ErrDisabled
}
