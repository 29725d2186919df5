package api

import (
	"database/sql"
	"net/http"

	"github.com/lmoreira/acervo/internal/advisor"
	"github.com/lmoreira/acervo/internal/imaging"
	"github.com/lmoreira/acervo/internal/inventory"
	"github.com/lmoreira/acervo/internal/model"
	"github.com/lmoreira/acervo/internal/store"
)

// ItemsHandler handles catalog, circulation and maintenance endpoints.
type ItemsHandler struct {
	Tracker *inventory.Tracker
	DB      *sql.DB
	Advisor advisor.Advisor
}

type withdrawRequest struct {
	TeacherName string `json:"teacherName"`
}

type defectRequest struct {
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// List handles GET /api/items. The view parameter selects which slice
// of the catalog to return; the default is everything browsable.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	var items []model.Item
	switch view := r.URL.Query().Get("view"); view {
	case "manutencao":
		items = h.Tracker.MaintenanceItems()
	case "retirada", "devolucao":
		items = h.Tracker.CirculationView(inventory.CirculationFilter(view), search)
	default:
		items = h.Tracker.SearchCatalog(search)
	}

	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft inventory.Draft
	if err := decodeJSON(r, &draft); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Tracker.AddItem(r.Context(), draft)
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Tracker.Get(r.PathValue("id"))
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var draft inventory.Draft
	if err := decodeJSON(r, &draft); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Tracker.UpdateItem(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Withdraw handles POST /api/items/{id}/withdraw.
func (h *ItemsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, tx, err := h.Tracker.Withdraw(r.Context(), r.PathValue("id"), req.TeacherName)
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"item": item, "transaction": tx})
}

// Return handles POST /api/items/{id}/return.
func (h *ItemsHandler) Return(w http.ResponseWriter, r *http.Request) {
	item, tx, err := h.Tracker.Return(r.Context(), r.PathValue("id"))
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"item": item, "transaction": tx})
}

// ReportDefect handles POST /api/items/{id}/defect. Inline photos come
// as base64 data URLs; each is normalized and stored before the item
// moves to maintenance, so a bad photo fails the whole report.
func (h *ItemsHandler) ReportDefect(w http.ResponseWriter, r *http.Request) {
	var req defectRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var refs []string
	for _, dataURL := range req.Images {
		photo, err := imaging.ProcessDataURL(dataURL)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid defect photo: "+err.Error())
			return
		}
		id, err := store.SaveImage(r.Context(), h.DB, photo.Data, photo.MIME)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to save photo")
			return
		}
		refs = append(refs, store.ImageRef(id))
	}

	item, tx, err := h.Tracker.ReportDefect(r.Context(), r.PathValue("id"), req.Description, refs)
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"item": item, "transaction": tx})
}

// Repair handles POST /api/items/{id}/repair.
func (h *ItemsHandler) Repair(w http.ResponseWriter, r *http.Request) {
	item, tx, err := h.Tracker.ResolveMaintenance(r.Context(), r.PathValue("id"))
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"item": item, "transaction": tx})
}

// Suggestions handles GET /api/items/{id}/suggestions. Advisor failures
// degrade to a fixed message; the endpoint never errors on them.
func (h *ItemsHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	item, err := h.Tracker.Get(r.PathValue("id"))
	if err != nil {
		inventoryError(w, err)
		return
	}

	text, err := h.Advisor.Suggest(r.Context(), item.Name, item.Description)
	if err != nil {
		text = advisor.ErrorMessage
	}
	jsonResponse(w, http.StatusOK, map[string]string{"suggestions": text})
}

// UploadImage handles POST /api/items/{id}/images.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := store.SaveImage(r.Context(), h.DB, photo.Data, photo.MIME)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	item, err := h.Tracker.AppendItemImages(r.Context(), r.PathValue("id"), store.ImageRef(id))
	if err != nil {
		inventoryError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ImagesHandler serves stored photos.
type ImagesHandler struct {
	DB *sql.DB
}

// Get handles GET /api/images/{id}.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
