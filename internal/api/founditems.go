package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/opencampus/lostfound/internal/model"
	"github.com/opencampus/lostfound/internal/store"
)

// FoundItemsHandler handles found item CRUD endpoints.
type FoundItemsHandler struct {
	DB *sql.DB
}

type foundItemRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	FoundLocation    string `json:"found_location"`
	FoundDate        string `json:"found_date"` // YYYY-MM-DD, optional
	PickupLocation   string `json:"pickup_location"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

type securityQARequest struct {
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

// List handles GET /api/found-items.
func (h *FoundItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListFoundItems(r.Context(), h.DB, 0)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list found items")
		return
	}
	if items == nil {
		items = []model.FoundItem{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// ListMine handles GET /api/found-items/mine.
func (h *FoundItemsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	items, err := store.ListFoundItems(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list found items")
		return
	}
	if items == nil {
		items = []model.FoundItem{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// Create handles POST /api/found-items.
func (h *FoundItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req foundItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.FoundLocation == "" || req.PickupLocation == "" {
		jsonError(w, http.StatusBadRequest, "name, found location and pickup location required")
		return
	}
	foundDate, ok := parseItemDate(req.FoundDate)
	if !ok {
		jsonError(w, http.StatusBadRequest, "found_date must be YYYY-MM-DD")
		return
	}

	item, err := store.CreateFoundItem(r.Context(), h.DB, claims.UserID, req.Name, req.Description,
		req.FoundLocation, req.PickupLocation, req.SecurityQuestion, req.SecurityAnswer, foundDate)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to report found item")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{"item": item})
}

// Get handles GET /api/found-items/{id}.
func (h *FoundItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetFoundItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get found item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"item": item})
}

// Update handles PUT /api/found-items/{id}.
func (h *FoundItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req foundItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.FoundLocation == "" || req.PickupLocation == "" {
		jsonError(w, http.StatusBadRequest, "name, found location and pickup location required")
		return
	}
	foundDate, ok := parseItemDate(req.FoundDate)
	if !ok {
		jsonError(w, http.StatusBadRequest, "found_date must be YYYY-MM-DD")
		return
	}

	updated, err := store.UpdateFoundItem(r.Context(), h.DB, id, claims.UserID, req.Name,
		req.Description, req.FoundLocation, req.PickupLocation, foundDate)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update found item")
		return
	}
	if !updated {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	item, err := store.GetFoundItem(r.Context(), h.DB, id)
	if err != nil || item == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load found item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"item": item})
}

// UpdateSecurityQA handles PUT /api/found-items/{id}/security.
func (h *FoundItemsHandler) UpdateSecurityQA(w http.ResponseWriter, r *http.Request) {
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

	var req securityQARequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SecurityQuestion == "" || req.SecurityAnswer == "" {
		jsonError(w, http.StatusBadRequest, "both question and answer required")
		return
	}

	updated, err := store.UpdateFoundItemSecurityQA(r.Context(), h.DB, id, claims.UserID,
		req.SecurityQuestion, req.SecurityAnswer)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update security question")
		return
	}
	if !updated {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "security question updated"})
}

// Delete handles DELETE /api/found-items/{id}.
func (h *FoundItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	deleted, err := store.DeleteFoundItem(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete found item")
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadPhoto handles PUT /api/found-items/{id}/photo.
func (h *FoundItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
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

	set, err := store.SetFoundItemPhoto(r.Context(), h.DB, id, claims.UserID, photo.Data, photo.MIME)
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

// GetPhoto handles GET /api/found-items/{id}/photo.
func (h *FoundItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetFoundItemPhoto(r.Context(), h.DB, id)
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
