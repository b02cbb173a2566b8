package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/opencampus/lostfound/internal/lifecycle"
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

// lifecycleError maps a lifecycle error to an HTTP response. Unclassified
// errors become opaque 500s.
func lifecycleError(w http.ResponseWriter, err error) {
	switch lifecycle.KindOf(err) {
	case lifecycle.KindValidation:
		jsonError(w, http.StatusBadRequest, err.Error())
	case lifecycle.KindUnauthorized:
		jsonError(w, http.StatusUnauthorized, err.Error())
	case lifecycle.KindForbidden:
		jsonError(w, http.StatusForbidden, err.Error())
	case lifecycle.KindNotFound:
		jsonError(w, http.StatusNotFound, err.Error())
	case lifecycle.KindConflict:
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("internal error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
