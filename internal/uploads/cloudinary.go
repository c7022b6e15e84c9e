package uploads

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader pushes campaign images to a Cloudinary folder and
// returns the served HTTPS URL.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader builds an uploader from account credentials.
func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("uploads: cloudinary config: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: "campaigns"}, nil
}

func (u *CloudinaryUploader) UploadImage(ctx context.Context, file io.Reader, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: u.folder,
	})
	if err != nil {
		return "", fmt.Errorf("uploads: cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}
