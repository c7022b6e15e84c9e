// Package uploads turns a campaign image into a public URL usable as the
// campaign's image_url field.
package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"campusfund/internal/storage"
)

// ImageUploader stores one image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, filename string) (string, error)
}

// FilesystemUploader is the development fallback: images land in the local
// file store and are served from the static mount.
type FilesystemUploader struct {
	Store   *storage.FileStore
	BaseURL string
}

func (u *FilesystemUploader) UploadImage(ctx context.Context, file io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("uploads: read image: %w", err)
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key, err := u.Store.Write(ctx, "campaigns/"+uuid.NewString()+ext, data)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(u.BaseURL, "/") + "/" + key, nil
}
