package api

import (
	"database/sql"
	"net/http"

	"github.com/lmoreira/acervo/internal/auth"
	"github.com/lmoreira/acervo/internal/store"
)

// SessionHandler switches the session between teacher and admin mode.
type SessionHandler struct {
	DB     *sql.DB
	Secret string
}

type unlockRequest struct {
	Passphrase string `json:"passphrase"`
}

// Get handles GET /api/mode.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"mode": GetMode(r.Context())})
}

// Unlock handles POST /api/mode: a correct admin passphrase upgrades the
// session cookie to admin mode.
func (h *SessionHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := store.VerifyAdminPassphrase(r.Context(), h.DB, req.Passphrase)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to verify passphrase")
		return
	}
	if !ok {
		jsonError(w, http.StatusUnauthorized, "incorrect passphrase")
		return
	}

	token, err := auth.GenerateModeToken(h.Secret, auth.ModeAdmin)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     ModeCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})
	jsonResponse(w, http.StatusOK, map[string]string{"mode": auth.ModeAdmin})
}

// Lock handles DELETE /api/mode: drops back to teacher mode.
func (h *SessionHandler) Lock(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     ModeCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	jsonResponse(w, http.StatusOK, map[string]string{"mode": auth.ModeTeacher})
}
