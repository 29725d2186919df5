package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lmoreira/acervo/internal/auth"
)

type contextKey string

const modeKey contextKey = "mode"

// ModeCookie is the cookie carrying the signed session mode token.
const ModeCookie = "acervo_mode"

// ModeMiddleware resolves the session mode from the mode cookie and adds
// it to the request context. Missing or invalid cookies degrade to
// teacher mode instead of failing the request.
func ModeMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mode := auth.ModeTeacher
			if cookie, err := r.Cookie(ModeCookie); err == nil {
				if validated, err := auth.ValidateModeToken(secret, cookie.Value); err == nil {
					mode = validated
				}
			}

			ctx := context.WithValue(r.Context(), modeKey, mode)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session is not in admin mode.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetMode(r.Context()) != auth.ModeAdmin {
			jsonError(w, http.StatusForbidden, "admin mode required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetMode retrieves the session mode from the context.
func GetMode(ctx context.Context) string {
	mode, _ := ctx.Value(modeKey).(string)
	if mode == "" {
		return auth.ModeTeacher
	}
	return mode
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
