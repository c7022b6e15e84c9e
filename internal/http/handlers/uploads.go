package handlers

import (
	"net/http"
)

// maxImageBytes caps campaign image uploads at 5 MiB.
const maxImageBytes = 5 << 20

// UploadCampaignImage accepts a multipart image and returns the public URL
// to use as the campaign's image_url.
func (a *App) UploadCampaignImage(w http.ResponseWriter, r *http.Request) {
	if a.Uploader == nil {
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "image uploads unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image too large or malformed upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file is required")
		return
	}
	defer file.Close()

	url, err := a.Uploader.UploadImage(r.Context(), file, header.Filename)
	if err != nil {
		a.Logger.Error().Err(err).Msg("image upload failed")
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "image upload failed, retry shortly")
		return
	}
	a.json(w, http.StatusCreated, map[string]string{"url": url})
}
