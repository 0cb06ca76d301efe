package loans

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
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "loans": items})
}

type applyRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	DurationMonths int             `json:"duration_months"`
	Purpose        string          `json:"purpose"`
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request, userID int64) {
	var req applyRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	loan, err := h.svc.Apply(r.Context(), userID, req.Amount, req.InterestRate, req.DurationMonths, req.Purpose)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Loan application submitted",
		"loan":    loan,
	})
}
