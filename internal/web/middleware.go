package web

import (
	"context"
	"net/http"

	"github.com/lmoreira/acervo/internal/auth"
)

type webContextKey string

const webModeKey webContextKey = "webmode"

// ModeCookie is the cookie carrying the signed session mode token. The
// web pages and the JSON API share it.
const ModeCookie = "acervo_mode"

// ModeCookieMiddleware resolves the session mode from the cookie and
// adds it to the request context. Every page is public; the mode only
// controls which management controls render and which POSTs succeed.
func ModeCookieMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mode := auth.ModeTeacher
			if cookie, err := r.Cookie(ModeCookie); err == nil {
				if validated, err := auth.ValidateModeToken(secret, cookie.Value); err == nil {
					mode = validated
				} else {
					clearModeCookie(w)
				}
			}

			ctx := context.WithValue(r.Context(), webModeKey, mode)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clearModeCookie clears the mode cookie with consistent attributes.
func clearModeCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ModeCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// setModeCookie issues a fresh admin mode cookie.
func setModeCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     ModeCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenExpiry.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetWebMode retrieves the session mode from web context.
func GetWebMode(ctx context.Context) string {
	mode, _ := ctx.Value(webModeKey).(string)
	if mode == "" {
		return auth.ModeTeacher
	}
	return mode
}

// isAdmin reports whether the request is in admin mode.
func isAdmin(r *http.Request) bool {
	return GetWebMode(r.Context()) == auth.ModeAdmin
}
