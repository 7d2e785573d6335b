package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"catalog-api/internal/middleware"
	"catalog-api/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

var statusByKind = map[services.Kind]int{
	services.KindNotFound:     http.StatusNotFound,
	services.KindBadRequest:   http.StatusBadRequest,
	services.KindConflict:     http.StatusConflict,
	services.KindForbidden:    http.StatusForbidden,
	services.KindValidation:   http.StatusBadRequest,
	services.KindUnauthorized: http.StatusUnauthorized,
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	respondWithJSON(w, code, middleware.ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// respondWithServiceError maps service errors to their status. Anything the
// service layer did not classify is logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var appErr *services.Error
	if errors.As(err, &appErr) {
		if status, ok := statusByKind[appErr.Kind]; ok {
			respondWithError(w, status, appErr.Message, appErr.Details...)
			return
		}
	}

	logger.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(r)).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
	respondWithError(w, http.StatusInternalServerError, "An internal error occurred")
}

func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func actorFrom(w http.ResponseWriter, r *http.Request) (services.Actor, bool) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
	}
	return actor, ok
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "Not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
