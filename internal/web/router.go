package web

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/lmoreira/acervo/internal/advisor"
	"github.com/lmoreira/acervo/internal/inventory"
	"github.com/lmoreira/acervo/internal/store"
	webembed "github.com/lmoreira/acervo/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(tracker *inventory.Tracker, db *sql.DB, adv advisor.Advisor, sessionSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Tracker:   tracker,
		DB:        db,
		Advisor:   adv,
		Templates: templates,
		Secret:    sessionSecret,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Pages.
	mux.HandleFunc("GET /{$}", s.Dashboard)
	mux.HandleFunc("GET /items", s.ItemsPage)
	mux.HandleFunc("GET /items/{id}", s.ItemDetailPage)
	mux.HandleFunc("GET /circulation", s.CirculationPage)
	mux.HandleFunc("GET /history", s.HistoryPage)
	mux.HandleFunc("GET /maintenance", s.MaintenancePage)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("GET /admin", s.AdminPage)

	// Circulation and maintenance submits.
	mux.HandleFunc("POST /items/{id}/withdraw", s.WithdrawSubmit)
	mux.HandleFunc("POST /items/{id}/return", s.ReturnSubmit)
	mux.HandleFunc("POST /items/{id}/defect", s.DefectSubmit)
	mux.HandleFunc("POST /items/{id}/repair", s.RepairSubmit)

	// Management submits.
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /items/{id}", s.ItemUpdateSubmit)
	mux.HandleFunc("POST /items/{id}/image", s.ItemImageSubmit)
	mux.HandleFunc("POST /import", s.ImportSubmit)

	// Admin mode toggle.
	mux.HandleFunc("POST /admin", s.AdminUnlockSubmit)
	mux.HandleFunc("POST /admin/logout", s.AdminLogoutSubmit)

	// Stored photos.
	mux.HandleFunc("GET /images/{id}", s.ImageGet)

	modeMW := ModeCookieMiddleware(sessionSecret)
	return modeMW(mux), nil
}

// ImageGet handles GET /images/{id}.
func (s *Server) ImageGet(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetImage(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
