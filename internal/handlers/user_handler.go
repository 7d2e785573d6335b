package handlers

import (
	"net/http"

	"catalog-api/internal/models"
	"catalog-api/internal/services"
	"catalog-api/internal/view"

	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService *services.UserService
	logger      zerolog.Logger
}

func NewUserHandler(userService *services.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view.User.ProjectAll(users, view.UserIndex))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view.User.Project(*user, view.UserShow))
}

// UpdateUser lets users edit their own profile and administrators edit the
// roles of others. The body is read as whichever shape the caller may send.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	scope, err := services.DecideUserUpdate(actor, userID)
	if err != nil {
		h.logger.Warn().Int64("actor_id", actor.ID).Int64("target_id", userID).Msg("Forbidden user update")
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	var user *models.User
	switch scope {
	case services.ScopeSelf:
		var upd models.SelfProfileUpdate
		if err := decodeJSON(r, &upd); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		user, err = h.userService.UpdateProfile(r.Context(), userID, &upd)
	case services.ScopeRoles:
		var upd models.RoleUpdate
		if err := decodeJSON(r, &upd); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		user, err = h.userService.UpdateRoles(r.Context(), userID, &upd, actor.ID)
	}
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view.User.Project(*user, view.UserShow))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := services.CanDeleteUser(actor, userID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.userService.Delete(r.Context(), userID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondNoContent(w)
}
