package api

import (
	"net/http"
	"strconv"

	"github.com/opencampus/lostfound/internal/lifecycle"
	"github.com/opencampus/lostfound/internal/model"
)

// ReportsHandler handles found-report endpoints, delegating to the
// found-report lifecycle.
type ReportsHandler struct {
	Reports *lifecycle.Reports
}

type createReportRequest struct {
	LostItemID     int64  `json:"lost_item_id"`
	Message        string `json:"message"`
	PickupLocation string `json:"pickup_location"`
}

type updateReportStatusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/found-reports.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Reports.Create(r.Context(), req.LostItemID, principal(r), req.Message, req.PickupLocation)
	if err != nil {
		lifecycleError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{"report": report})
}

// ListMine handles GET /api/found-reports/mine.
func (h *ReportsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Reports.ListFiledByUser(r.Context(), principal(r))
	if err != nil {
		lifecycleError(w, err)
		return
	}
	if reports == nil {
		reports = []model.FoundReport{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"reports": reports})
}

// ListForMyItems handles GET /api/found-reports/my-items.
func (h *ReportsHandler) ListForMyItems(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Reports.ListAboutMyLostItems(r.Context(), principal(r))
	if err != nil {
		lifecycleError(w, err)
		return
	}
	if reports == nil {
		reports = []model.FoundReport{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"reports": reports})
}

// UpdateStatus handles PUT /api/found-reports/{id}/status.
func (h *ReportsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	var req updateReportStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Reports.UpdateStatus(r.Context(), id, req.Status, principal(r))
	if err != nil {
		lifecycleError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"report": report})
}

// Delete handles DELETE /api/found-reports/{id}.
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	if err := h.Reports.Delete(r.Context(), id, principal(r)); err != nil {
		lifecycleError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "report deleted"})
}
