package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"catalog-api/internal/services"
	"catalog-api/internal/view"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

// ThumbnailField is the multipart field carrying an uploaded image.
const ThumbnailField = "thumbnail"

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

type ImageHandler struct {
	imageService *services.ImageService
	urls         *URLBuilder
	maxBytes     int64
	logger       zerolog.Logger
}

func NewImageHandler(imageService *services.ImageService, urls *URLBuilder, maxBytes int64, logger zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		urls:         urls,
		maxBytes:     maxBytes,
		logger:       logger,
	}
}

func (h *ImageHandler) GetImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.imageService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	if len(images) == 0 {
		respondWithServiceError(w, r, h.logger, services.ErrNoImages)
		return
	}

	respondWithJSON(w, http.StatusOK, view.Image.ProjectAll(h.urls.Links(r, images), view.ImagesIndex))
}

// GetImage streams the stored file with its sniffed content type.
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid image ID")
		return
	}

	file, err := h.imageService.Open(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("ETag", `"`+strconv.FormatUint(xxhash.Sum64(file.Data), 16)+`"`)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, file.Name, time.Time{}, bytes.NewReader(file.Data))
}

func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	file, ok := h.thumbnail(w, r)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	image, err := h.imageService.Upload(r.Context(), productID, readerOf(file))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	link := view.ImageLink{Image: *image, URL: h.urls.ImageURL(r, image.ID)}
	respondWithJSON(w, http.StatusCreated, view.Image.Project(link, view.ImagesIndex))
}

func (h *ImageHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid image ID")
		return
	}

	file, ok := h.thumbnail(w, r)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	image, err := h.imageService.Replace(r.Context(), id, readerOf(file))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	link := view.ImageLink{Image: *image, URL: h.urls.ImageURL(r, image.ID)}
	respondWithJSON(w, http.StatusOK, view.Image.Project(link, view.ImagesIndex))
}

func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid image ID")
		return
	}

	if err := h.imageService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondNoContent(w)
}

// thumbnail returns the uploaded file, or nil when the request carries none.
// It reports false after writing an error response.
func (h *ImageHandler) thumbnail(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	err := r.ParseMultipartForm(h.maxBytes)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respondWithError(w, http.StatusBadRequest, "Validation failed",
			"thumbnail: the file is too large, allowed maximum is "+strconv.FormatInt(h.maxBytes, 10)+" bytes")
		return nil, false
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return nil, true
	case err != nil:
		h.logger.Warn().Err(err).Msg("Malformed multipart body")
		respondWithError(w, http.StatusBadRequest, "Invalid multipart body")
		return nil, false
	}

	file, _, err := r.FormFile(ThumbnailField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart body")
		return nil, false
	}
	return file, true
}

// readerOf keeps a missing file as a nil interface.
func readerOf(file multipart.File) io.Reader {
	if file == nil {
		return nil
	}
	return file
}
