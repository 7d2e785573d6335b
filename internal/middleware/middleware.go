package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"catalog-api/internal/models"
	"catalog-api/internal/services"

	"github.com/google/uuid"
	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRolesKey contextKey = "user_roles"
	UserEmailKey contextKey = "user_email"
	RequestIDKey contextKey = "request_id"
)

const slowRequestThreshold = time.Second

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// TokenValidator parses bearer tokens into claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.Claims, error)
}

// UserLookup loads the stored account behind a token.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

func CORS() func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Server-Timing", "X-Request-ID", "ETag"},
		MaxAge:         86400,
	})
	return c.Handler
}

func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Content-Security-Policy", "default-src 'self'")
			next.ServeHTTP(w, r)
		})
	}
}

type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter returns nil when r is not positive, which disables limiting.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	if r <= 0 {
		return nil
	}
	if b < 1 {
		b = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(r, b),
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				respondWithError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequestLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			r = r.WithContext(ctx)

			logger.Debug().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("Incoming request")

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			logger.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration", duration).
				Msg("Request completed")
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	onHeader    func()
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
		rw.statusCode = code
		if rw.onHeader != nil {
			rw.onHeader()
		}
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Authentication accepts `Authorization: Bearer <token>` and stores the
// caller's id, email and roles in the request context. Roles come from the
// stored user, so a demotion or deletion takes effect on the next request.
func Authentication(tokens TokenValidator, users UserLookup, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid token")
				respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if errors.Is(err, services.ErrUserNotFound) {
				logger.Warn().Int64("user_id", claims.UserID).Msg("Token for unknown user")
				respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			if err != nil {
				logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to load token user")
				respondWithError(w, http.StatusInternalServerError, "An internal error occurred")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserRolesKey, user.Roles.Normalize())
			ctx = context.WithValue(ctx, UserEmailKey, user.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole passes callers holding at least one of the allowed roles.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := GetUserRoles(r)
			if !ok {
				respondWithError(w, http.StatusForbidden, "User role not found")
				return
			}

			if !roles.HasAny(allowedRoles...) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestValidation requires a JSON body on POST and PATCH requests.
func RequestValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPatch {
				contentType := r.Header.Get("Content-Type")
				if !strings.Contains(contentType, "application/json") {
					respondWithError(w, http.StatusBadRequest, "Content-Type must be application/json")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ErrorHandling(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("error", err).
						Str("path", r.URL.Path).
						Str("method", r.Method).
						Msg("Panic recovered")

					respondWithError(w, http.StatusInternalServerError, "An internal error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// PerformanceMonitoring reports handler time in a Server-Timing header and
// logs requests slower than a second.
func PerformanceMonitoring(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		timed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metric := servertiming.FromContext(r.Context()).NewMetric("app").Start()

			// the metric must stop before servertiming flushes the header
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK, onHeader: func() { metric.Stop() }}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)

			if duration > slowRequestThreshold {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Dur("duration", duration).
					Int("status", wrapped.statusCode).
					Msg("Slow request detected")
			}
		})
		return servertiming.Middleware(timed, nil)
	}
}

// GetActor returns the authenticated caller.
func GetActor(r *http.Request) (services.Actor, bool) {
	userID, ok := GetUserID(r)
	if !ok {
		return services.Actor{}, false
	}
	roles, _ := GetUserRoles(r)
	return services.Actor{ID: userID, Roles: roles}, true
}

func GetUserID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	return userID, ok
}

func GetUserRoles(r *http.Request) (models.Roles, bool) {
	roles, ok := r.Context().Value(UserRolesKey).(models.Roles)
	return roles, ok
}

func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(RequestIDKey).(string)
	return id
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
