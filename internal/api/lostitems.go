package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/opencampus/lostfound/internal/model"
	"github.com/opencampus/lostfound/internal/store"
)

// LostItemsHandler handles lost item CRUD endpoints.
type LostItemsHandler struct {
	DB *sql.DB
}

type lostItemRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	LostLocation string `json:"lost_location"`
	LostDate     string `json:"lost_date"` // YYYY-MM-DD, optional
}

// parseItemDate parses an optional YYYY-MM-DD date field.
func parseItemDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// List handles GET /api/lost-items.
func (h *LostItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListLostItems(r.Context(), h.DB, 0)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list lost items")
		return
	}
	if items == nil {
		items = []model.LostItem{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// ListMine handles GET /api/lost-items/mine.
func (h *LostItemsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	items, err := store.ListLostItems(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list lost items")
		return
	}
	if items == nil {
		items = []model.LostItem{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// Create handles POST /api/lost-items.
func (h *LostItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req lostItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.LostLocation == "" {
		jsonError(w, http.StatusBadRequest, "name and lost location required")
		return
	}
	lostDate, ok := parseItemDate(req.LostDate)
	if !ok {
		jsonError(w, http.StatusBadRequest, "lost_date must be YYYY-MM-DD")
		return
	}

	item, err := store.CreateLostItem(r.Context(), h.DB, claims.UserID, req.Name, req.Description, req.LostLocation, lostDate)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to report lost item")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{"item": item})
}

// Get handles GET /api/lost-items/{id}.
func (h *LostItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetLostItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get lost item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"item": item})
}

// Update handles PUT /api/lost-items/{id}.
func (h *LostItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req lostItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.LostLocation == "" {
		jsonError(w, http.StatusBadRequest, "name and lost location required")
		return
	}
	lostDate, ok := parseItemDate(req.LostDate)
	if !ok {
		jsonError(w, http.StatusBadRequest, "lost_date must be YYYY-MM-DD")
		return
	}

	updated, err := store.UpdateLostItem(r.Context(), h.DB, id, claims.UserID, req.Name, req.Description, req.LostLocation, lostDate)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update lost item")
		return
	}
	if !updated {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	item, err := store.GetLostItem(r.Context(), h.DB, id)
	if err != nil || item == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load lost item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"item": item})
}

// Delete handles DELETE /api/lost-items/{id}.
func (h *LostItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	deleted, err := store.DeleteLostItem(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete lost item")
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadPhoto handles PUT /api/lost-items/{id}/photo.
func (h *LostItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	photo, ok := readPhotoUpload(w, r)
	if !ok {
		return
	}

	set, err := store.SetLostItemPhoto(r.Context(), h.DB, id, claims.UserID, photo.Data, photo.MIME)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}
	if !set {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/lost-items/{id}/photo.
func (h *LostItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetLostItemPhoto(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
