package marketdata

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// QuoteWS streams bus quotes to browser clients. An optional
// ?symbol=BTC/USDT filters the stream to one pair.
type QuoteWS struct {
	bus      *Bus
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewQuoteWS(bus *Bus, origin string, logger zerolog.Logger) *QuoteWS {
	return &QuoteWS{
		bus: bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) },
		},
		logger: logger.With().Str("component", "marketdata_ws").Logger(),
	}
}

func allowOrigin(r *http.Request, origin string) bool {
	if origin == "*" {
		return true
	}
	return strings.EqualFold(r.Header.Get("Origin"), origin)
}

func (h *QuoteWS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	filter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))

	sub := h.bus.Subscribe()
	defer h.bus.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case q, ok := <-sub:
			if !ok {
				return
			}
			if filter != "" && q.Symbol != filter {
				continue
			}
			if err := conn.WriteJSON(q); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
