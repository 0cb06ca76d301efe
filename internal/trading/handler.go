package trading

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"pipmatrix/internal/httputil"
	"pipmatrix/internal/types"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func tradeID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type openRequest struct {
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	Stake      decimal.Decimal `json:"stake"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Leverage   int             `json:"leverage"`
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request, userID int64, isDemo bool) {
	var req openRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	trade, err := h.svc.Open(r.Context(), userID, OpenParams{
		Symbol:     req.Symbol,
		Side:       types.TradeSide(req.Side),
		Stake:      req.Stake,
		EntryPrice: req.EntryPrice,
		Leverage:   req.Leverage,
		IsDemo:     isDemo,
	})
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Trade opened",
		"trade":   trade,
	})
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request, userID int64, clamp bool) {
	id, err := tradeID(r)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, "invalid trade id")
		return
	}
	// exit_price is optional; an empty body settles at the entry price
	var req struct {
		ExitPrice *decimal.Decimal `json:"exit_price"`
	}
	_ = httputil.ReadJSON(r, &req)
	trade, err := h.svc.Close(r.Context(), userID, id, req.ExitPrice, clamp)
	if err != nil {
		switch {
		case errors.Is(err, ErrTradeNotFound):
			httputil.Fail(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrTradeNotOpen):
			httputil.Fail(w, http.StatusBadRequest, err.Error())
		default:
			httputil.Fail(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Trade closed",
		"trade":       trade,
		"profit_loss": trade.ProfitLoss,
	})
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request, userID int64) {
	h.open(w, r, userID, false)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request, userID int64) {
	h.close(w, r, userID, false)
}

// listFilter reads the trade list query: ?demo=true switches to the
// practice account, anything else lists live trades.
func listFilter(q url.Values) (*bool, string) {
	demo := q.Get("demo") == "true"
	return &demo, q.Get("status")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, userID int64) {
	isDemo, status := listFilter(r.URL.Query())
	trades, err := h.svc.List(r.Context(), userID, isDemo, status)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "trades": trades})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := tradeID(r)
	if err != nil {
		httputil.Fail(w, http.StatusBadRequest, "invalid trade id")
		return
	}
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, ErrTradeNotFound):
			httputil.Fail(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrTradeStillOpen):
			httputil.Fail(w, http.StatusBadRequest, err.Error())
		default:
			httputil.Fail(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	httputil.OK(w, "Trade deleted")
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request, userID int64) {
	live := false
	closed := string(types.TradeStatusClosed)
	trades, err := h.svc.List(r.Context(), userID, &live, closed)
	if err != nil {
		httputil.Fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := h.svc.HistoryStats(r.Context(), userID, false)
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
