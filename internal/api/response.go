package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lmoreira/acervo/internal/importer"
	"github.com/lmoreira/acervo/internal/inventory"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// inventoryError maps tracker and importer failures to HTTP statuses:
// validation and import problems are the client's fault, stale-status
// operations conflict with current state, unknown ids are 404 and
// anything else is a server error.
func inventoryError(w http.ResponseWriter, err error) {
	switch {
	case inventory.IsValidation(err), importer.IsImportError(err):
		jsonError(w, http.StatusBadRequest, err.Error())
	case inventory.IsPrecondition(err):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, inventory.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	default:
		slog.Error("inventory operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
