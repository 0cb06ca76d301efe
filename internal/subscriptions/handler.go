package subscriptions

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
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "subscriptions": items})
}

type createRequest struct {
	SubscriptionType string          `json:"subscription_type"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	TxID             string          `json:"txid"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := h.svc.Create(r.Context(), userID, req.SubscriptionType, req.Amount, req.PaymentMethod, req.TxID)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Subscription request submitted",
		"subscription": sub,
	})
}
