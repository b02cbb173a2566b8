package api

import (
	"net/http"
	"strconv"

	"github.com/opencampus/lostfound/internal/lifecycle"
	"github.com/opencampus/lostfound/internal/model"
)

// ClaimsHandler handles claim endpoints, delegating to the claim lifecycle.
type ClaimsHandler struct {
	Claims *lifecycle.Claims
}

type createClaimRequest struct {
	FoundItemID int64  `json:"found_item_id"`
	Message     string `json:"message"`
}

type updateClaimStatusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Claims.Create(r.Context(), req.FoundItemID, principal(r), req.Message)
	if err != nil {
		lifecycleError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{"claim": claim})
}

// ListMine handles GET /api/claims/user.
func (h *ClaimsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Claims.ListForUser(r.Context(), principal(r))
	if err != nil {
		lifecycleError(w, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"claims": claims})
}

// ListForItem handles GET /api/claims/item/{itemId}.
func (h *ClaimsHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("itemId"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	claims, err := h.Claims.ListForItem(r.Context(), itemID, principal(r))
	if err != nil {
		lifecycleError(w, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"claims": claims})
}

// Get handles GET /api/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := h.Claims.Get(r.Context(), id, principal(r))
	if err != nil {
		lifecycleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"claim": claim})
}

// UpdateStatus handles PUT /api/claims/{id}/status.
func (h *ClaimsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req updateClaimStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Claims.UpdateStatus(r.Context(), id, req.Status, principal(r))
	if err != nil {
		lifecycleError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"claim": claim})
}

// Delete handles DELETE /api/claims/{id}.
func (h *ClaimsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	if err := h.Claims.Delete(r.Context(), id, principal(r)); err != nil {
		lifecycleError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "claim deleted"})
}
