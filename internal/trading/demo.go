package trading

import (
	"net/http"

	"pipmatrix/internal/httputil"
	"pipmatrix/internal/types"
)

// DemoHandler serves the practice-account endpoints. They reuse the
// same trade lifecycle as live trading against the demo balance.
type DemoHandler struct {
	svc *Service
}

func NewDemoHandler(svc *Service) *DemoHandler {
	return &DemoHandler{svc: svc}
}

func (h *DemoHandler) Balance(w http.ResponseWriter, r *http.Request, userID int64) {
	balance, err := h.svc.DemoBalance(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "demo_balance": balance})
}

func (h *DemoHandler) Place(w http.ResponseWriter, r *http.Request, userID int64) {
	handler := &Handler{svc: h.svc}
	handler.open(w, r, userID, true)
}

func (h *DemoHandler) Close(w http.ResponseWriter, r *http.Request, userID int64) {
	handler := &Handler{svc: h.svc}
	handler.close(w, r, userID, true)
}

func (h *DemoHandler) OpenTrades(w http.ResponseWriter, r *http.Request, userID int64) {
	demo := true
	trades, err := h.svc.List(r.Context(), userID, &demo, string(types.TradeStatusOpen))
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "trades": trades})
}

func (h *DemoHandler) History(w http.ResponseWriter, r *http.Request, userID int64) {
	demo := true
	trades, err := h.svc.List(r.Context(), userID, &demo, string(types.TradeStatusClosed))
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := h.svc.HistoryStats(r.Context(), userID, true)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"trades":  trades,
		"stats":   stats,
	})
}

func (h *DemoHandler) Reset(w http.ResponseWriter, r *http.Request, userID int64) {
	balance, err := h.svc.ResetDemo(r.Context(), userID)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Demo account reset",
		"demo_balance": balance,
	})
}
