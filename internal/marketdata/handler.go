package marketdata

import (
	"net/http"
	"time"

	"pipmatrix/internal/httputil"
)

// Handler exposes a REST snapshot of the simulated feed for clients
// that do not hold a websocket open.
type Handler struct {
	pub     *Publisher
	symbols []string
}

func NewHandler(pub *Publisher, symbols []string) *Handler {
	return &Handler{pub: pub, symbols: symbols}
}

func (h *Handler) Prices(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UnixMilli()
	out := []Quote{}
	for _, sym := range h.symbols {
		price, ok := h.pub.Price(sym)
		if !ok {
			continue
		}
		out = append(out, Quote{Symbol: sym, Price: formatPrice(price), Timestamp: now})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "prices": out})
}
