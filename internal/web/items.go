package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lmoreira/acervo/internal/advisor"
	"github.com/lmoreira/acervo/internal/imaging"
	"github.com/lmoreira/acervo/internal/inventory"
	"github.com/lmoreira/acervo/internal/model"
	"github.com/lmoreira/acervo/internal/store"
)

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats := s.Tracker.Stats(5)

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Stats model.Stats
	}{
		PageData: PageData{Title: "Painel", IsAdmin: isAdmin(r)},
		Stats:    stats,
	})
}

// ItemsPage handles GET /items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	items := s.Tracker.SearchCatalog(search)

	s.Templates.Render(w, "items.html", &struct {
		PageData
		Items  []model.Item
		Search string
	}{
		PageData: PageData{Title: "Acervo", IsAdmin: isAdmin(r)},
		Items:    items,
		Search:   search,
	})
}

// ItemDetailPage handles GET /items/{id}. With ?suggest=1 the advisor
// is consulted and its text rendered inline; advisor failures show a
// fixed message instead of erroring the page.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	item, err := s.Tracker.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	var suggestions string
	if r.URL.Query().Get("suggest") == "1" {
		suggestions, err = s.Advisor.Suggest(r.Context(), item.Name, item.Description)
		if err != nil {
			slog.Warn("suggestion request failed", "item", item.Name, "error", err)
			suggestions = advisor.ErrorMessage
		}
	}

	s.Templates.Render(w, "item_detail.html", &struct {
		PageData
		Item        model.Item
		Suggestions string
	}{
		PageData:    PageData{Title: item.Name, IsAdmin: isAdmin(r), Error: r.URL.Query().Get("error")},
		Item:        item,
		Suggestions: suggestions,
	})
}

// WithdrawSubmit handles POST /items/{id}/withdraw.
func (s *Server) WithdrawSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	teacherName := r.FormValue("teacher_name")

	item, _, err := s.Tracker.Withdraw(r.Context(), id, teacherName)
	if err != nil {
		redirectWithError(w, r, "/items/"+id, err)
		return
	}

	slog.Info("item withdrawn", "item", item.Name, "teacher", teacherName)
	http.Redirect(w, r, "/circulation?tab=devolucao", http.StatusSeeOther)
}

// ReturnSubmit handles POST /items/{id}/return.
func (s *Server) ReturnSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, tx, err := s.Tracker.Return(r.Context(), id)
	if err != nil {
		redirectWithError(w, r, "/items/"+id, err)
		return
	}

	slog.Info("item returned", "item", item.Name, "teacher", tx.TeacherName)
	http.Redirect(w, r, "/circulation?tab=retirada", http.StatusSeeOther)
}

// DefectSubmit handles POST /items/{id}/defect. The optional photo is
// normalized and stored before the item enters maintenance.
func (s *Server) DefectSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	description := r.FormValue("description")

	var refs []string
	if file, _, err := r.FormFile("photo"); err == nil {
		defer file.Close()

		photo, err := imaging.Process(file)
		if err != nil {
			redirectWithError(w, r, "/items/"+id, err)
			return
		}
		imageID, err := store.SaveImage(r.Context(), s.DB, photo.Data, photo.MIME)
		if err != nil {
			slog.Error("failed to save defect photo", "error", err)
			http.Error(w, "failed to save photo", http.StatusInternalServerError)
			return
		}
		refs = append(refs, store.ImageRef(imageID))
	}

	item, _, err := s.Tracker.ReportDefect(r.Context(), id, description, refs)
	if err != nil {
		redirectWithError(w, r, "/items/"+id, err)
		return
	}

	slog.Info("defect reported", "item", item.Name)
	http.Redirect(w, r, "/maintenance", http.StatusSeeOther)
}

// RepairSubmit handles POST /items/{id}/repair.
func (s *Server) RepairSubmit(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	item, _, err := s.Tracker.ResolveMaintenance(r.Context(), r.PathValue("id"))
	if err != nil {
		redirectWithError(w, r, "/maintenance", err)
		return
	}

	slog.Info("item repaired", "item", item.Name)
	http.Redirect(w, r, "/maintenance", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	s.Templates.Render(w, "register.html", &struct {
		PageData
	}{
		PageData: PageData{
			Title:   "Cadastrar Material",
			IsAdmin: true,
			Error:   r.URL.Query().Get("error"),
			Success: r.URL.Query().Get("success"),
		},
	})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	draft := inventory.Draft{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Quantity:    quantity,
	}

	item, err := s.Tracker.AddItem(r.Context(), draft)
	if err != nil {
		redirectWithError(w, r, "/register", err)
		return
	}

	slog.Info("item registered", "item", item.Name)
	http.Redirect(w, r, "/items/"+item.ID, http.StatusSeeOther)
}

// ItemUpdateSubmit handles POST /items/{id}.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id := r.PathValue("id")
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	draft := inventory.Draft{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Quantity:    quantity,
	}

	item, err := s.Tracker.UpdateItem(r.Context(), id, draft)
	if err != nil {
		redirectWithError(w, r, "/items/"+id, err)
		return
	}

	slog.Info("item updated", "item", item.Name)
	http.Redirect(w, r, "/items/"+id, http.StatusSeeOther)
}

// ItemImageSubmit handles POST /items/{id}/image.
func (s *Server) ItemImageSubmit(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Process the image: validate format by sniffing bytes, downscale, compress.
	photo, err := imaging.Process(file)
	if err != nil {
		redirectWithError(w, r, "/items/"+id, err)
		return
	}

	imageID, err := store.SaveImage(r.Context(), s.DB, photo.Data, photo.MIME)
	if err != nil {
		slog.Error("failed to save image", "error", err)
		http.Error(w, "failed to save image", http.StatusInternalServerError)
		return
	}

	item, err := s.Tracker.AppendItemImages(r.Context(), id, store.ImageRef(imageID))
	if err != nil {
		redirectWithError(w, r, "/items/"+id, err)
		return
	}

	slog.Info("item photo uploaded", "item", item.Name)
	http.Redirect(w, r, "/items/"+id, http.StatusSeeOther)
}
