package handlers

import (
	"net/http"

	"catalog-api/internal/models"
	"catalog-api/internal/services"
	"catalog-api/internal/view"

	"github.com/rs/zerolog"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	logger          zerolog.Logger
}

func NewCategoryHandler(categoryService *services.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view.Category.ProjectAll(categories, view.CategoriesIndex))
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view.Category.Project(*category, view.CategoriesIndex, view.CategoriesShow))
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, view.Category.Project(*category, view.CategoriesShow))
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var upd models.CategoryUpdate
	if err := decodeJSON(r, &upd); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, &upd)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view.Category.Project(*category, view.CategoriesShow))
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondNoContent(w)
}
