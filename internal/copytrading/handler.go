package copytrading

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

func (h *Handler) ListCopy(w http.ResponseWriter, r *http.Request, userID int64) {
	items, err := h.svc.ListCopy(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "copy_trading": items})
}

type startCopyRequest struct {
	TraderName  string          `json:"trader_name"`
	Amount      decimal.Decimal `json:"amount"`
	ProfitShare decimal.Decimal `json:"profit_share"`
}

func (h *Handler) StartCopy(w http.ResponseWriter, r *http.Request, userID int64) {
	var req startCopyRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.StartCopy(r.Context(), userID, req.TraderName, req.Amount, req.ProfitShare); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.OK(w, "Copy trading started")
}

func (h *Handler) ListBots(w http.ResponseWriter, r *http.Request, userID int64) {
	items, err := h.svc.ListBots(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "bots": items})
}

type startBotRequest struct {
	BotName  string          `json:"bot_name"`
	Strategy string          `json:"strategy"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *Handler) StartBot(w http.ResponseWriter, r *http.Request, userID int64) {
	var req startBotRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.StartBot(r.Context(), userID, req.BotName, req.Strategy, req.Amount); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.OK(w, "Trading bot activated")
}
