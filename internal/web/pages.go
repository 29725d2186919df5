package web

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/lmoreira/acervo/internal/auth"
	"github.com/lmoreira/acervo/internal/importer"
	"github.com/lmoreira/acervo/internal/inventory"
	"github.com/lmoreira/acervo/internal/model"
	"github.com/lmoreira/acervo/internal/store"
)

// redirectWithError sends the browser back to path with the failure
// message in the error query parameter.
func redirectWithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
}

// CirculationPage handles GET /circulation. The retirada tab lists
// available items, the devolucao tab lists loaned ones.
func (s *Server) CirculationPage(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	if tab != string(inventory.FilterReturn) {
		tab = string(inventory.FilterWithdraw)
	}
	search := r.URL.Query().Get("q")

	items := s.Tracker.CirculationView(inventory.CirculationFilter(tab), search)

	s.Templates.Render(w, "circulation.html", &struct {
		PageData
		Items  []model.Item
		Tab    string
		Search string
	}{
		PageData: PageData{Title: "Circulação", IsAdmin: isAdmin(r)},
		Items:    items,
		Tab:      tab,
		Search:   search,
	})
}

// HistoryPage handles GET /history with sortable columns.
func (s *Server) HistoryPage(w http.ResponseWriter, r *http.Request) {
	sortKey := r.URL.Query().Get("sort")
	if sortKey == "" {
		sortKey = inventory.SortByTimestamp
	}
	dir := r.URL.Query().Get("dir")
	ascending := dir == "asc"

	entries := s.Tracker.Transactions()
	entries = inventory.SortTransactions(entries, sortKey, ascending)

	s.Templates.Render(w, "history.html", &struct {
		PageData
		Entries []model.Transaction
		SortKey string
		Dir     string
	}{
		PageData: PageData{Title: "Histórico", IsAdmin: isAdmin(r)},
		Entries:  entries,
		SortKey:  sortKey,
		Dir:      dir,
	})
}

// MaintenancePage handles GET /maintenance.
func (s *Server) MaintenancePage(w http.ResponseWriter, r *http.Request) {
	items := s.Tracker.MaintenanceItems()

	s.Templates.Render(w, "maintenance.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: PageData{Title: "Manutenção", IsAdmin: isAdmin(r), Error: r.URL.Query().Get("error")},
		Items:    items,
	})
}

// AdminPage handles GET /admin.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "admin.html", &struct {
		PageData
	}{
		PageData: PageData{
			Title:   "Modo Administrador",
			IsAdmin: isAdmin(r),
			Error:   r.URL.Query().Get("error"),
		},
	})
}

// AdminUnlockSubmit handles POST /admin.
func (s *Server) AdminUnlockSubmit(w http.ResponseWriter, r *http.Request) {
	passphrase := r.FormValue("passphrase")

	ok, err := store.VerifyAdminPassphrase(r.Context(), s.DB, passphrase)
	if err != nil {
		slog.Error("failed to verify passphrase", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Redirect(w, r, "/admin?error=Senha+incorreta", http.StatusSeeOther)
		return
	}

	token, err := auth.GenerateModeToken(s.Secret, auth.ModeAdmin)
	if err != nil {
		slog.Error("failed to issue mode token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	setModeCookie(w, token)
	slog.Info("admin mode unlocked")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AdminLogoutSubmit handles POST /admin/logout.
func (s *Server) AdminLogoutSubmit(w http.ResponseWriter, r *http.Request) {
	clearModeCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ImportSubmit handles POST /import with a spreadsheet file.
func (s *Server) ImportSubmit(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "spreadsheet required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	drafts, err := importer.Parse(header.Filename, file)
	if err != nil {
		redirectWithError(w, r, "/register", err)
		return
	}

	added, err := s.Tracker.ImportItems(r.Context(), drafts)
	if err != nil {
		redirectWithError(w, r, "/register", err)
		return
	}

	slog.Info("spreadsheet imported", "file", header.Filename, "items", len(added))
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}
