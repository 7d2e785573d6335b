package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"catalog-api/internal/models"
	"catalog-api/internal/view"

	"github.com/gorilla/mux"
)

// ImageRoute names the route that serves image files.
const ImageRoute = "image.show"

// URLBuilder renders absolute image URLs from the router's named route.
type URLBuilder struct {
	router  *mux.Router
	baseURL string
}

// NewURLBuilder uses baseURL when set, otherwise the scheme and host of each request.
func NewURLBuilder(router *mux.Router, baseURL string) *URLBuilder {
	return &URLBuilder{router: router, baseURL: strings.TrimRight(baseURL, "/")}
}

func (b *URLBuilder) ImageURL(r *http.Request, id int64) string {
	route := b.router.Get(ImageRoute)
	if route == nil {
		return ""
	}
	u, err := route.URLPath("id", strconv.FormatInt(id, 10))
	if err != nil {
		return ""
	}
	return b.origin(r) + u.Path
}

// Links pairs each image with its URL.
func (b *URLBuilder) Links(r *http.Request, images []models.Image) []view.ImageLink {
	links := make([]view.ImageLink, 0, len(images))
	for _, img := range images {
		links = append(links, view.ImageLink{Image: img, URL: b.ImageURL(r, img.ID)})
	}
	return links
}

func (b *URLBuilder) origin(r *http.Request) string {
	if b.baseURL != "" {
		return b.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
