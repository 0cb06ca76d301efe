package invest

import (
	"net/http"

	"github.com/shopspring/decimal"

	"pipmatrix/internal/httputil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, userID int64) {
	items, err := h.svc.List(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "investments": items})
}

type createRequest struct {
	PlanName      string          `json:"plan_name"`
	Amount        decimal.Decimal `json:"amount"`
	ROIPercentage decimal.Decimal `json:"roi_percentage"`
	DurationDays  int             `json:"duration_days"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := h.svc.Create(r.Context(), userID, req.PlanName, req.Amount, req.ROIPercentage, req.DurationDays)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Investment created successfully",
		"investment": inv,
	})
}
