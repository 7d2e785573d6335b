package handlers

import (
	"net/http"

	"catalog-api/internal/criteria"
	"catalog-api/internal/models"
	"catalog-api/internal/services"
	"catalog-api/internal/view"

	"github.com/rs/zerolog"
)

type ProductHandler struct {
	productService *services.ProductService
	urls           *URLBuilder
	logger         zerolog.Logger
}

func NewProductHandler(productService *services.ProductService, urls *URLBuilder, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		urls:           urls,
		logger:         logger,
	}
}

// GetProducts filters by the category, minPrice, maxPrice, minQuantity and
// maxQuantity query parameters.
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	c := criteria.FromQuery(r.URL.Query())

	products, err := h.productService.FindByCriteria(r.Context(), c)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view.Product.ProjectAll(products, view.ProductsIndex))
}

// GetProduct renders the product with absolute URLs for its images.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	images := view.Image.ProjectAll(h.urls.Links(r, product.Images), view.ImagesIndex)
	body := view.Product.Project(*product, view.ProductsIndex, view.ProductsShow).
		Without("images").
		With("images", images)

	respondWithJSON(w, http.StatusOK, body)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, view.Product.Project(*product, view.ProductsPost))
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var upd models.ProductUpdate
	if err := decodeJSON(r, &upd); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), id, &upd)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view.Product.Project(*product, view.ProductsPost))
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondNoContent(w)
}
