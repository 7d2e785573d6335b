package handlers

import (
	"net/http"

	"catalog-api/internal/models"
	"catalog-api/internal/services"
	"catalog-api/internal/view"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	userService *services.UserService
	authService *services.AuthService
	logger      zerolog.Logger
}

func NewAuthHandler(userService *services.UserService, authService *services.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Registration failed")
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, view.User.Project(*user, view.UserRegister))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), &req)
	if err != nil {
		h.logger.Warn().Str("email", req.Email).Msg("Login failed")
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.respondWithToken(w, r, user)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), actor.ID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.respondWithToken(w, r, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *models.User) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		h.logger.Error().Err(err).Msg("Token generation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondWithJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}
