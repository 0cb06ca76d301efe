package marketdata

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// seedPrices anchors the random walk so quotes look plausible for the
// common pairs. Unknown symbols start at 100.
var seedPrices = map[string]float64{
	"BTC/USDT": 67000,
	"ETH/USDT": 3500,
	"BNB/USDT": 580,
	"SOL/USDT": 150,
	"XRP/USDT": 0.52,
	"EUR/USD":  1.085,
	"GBP/USD":  1.27,
	"USD/JPY":  149.5,
}

type symbolState struct {
	price float64
	open  float64
}

// Publisher simulates a market feed: every tick each configured
// symbol takes a small random step and the new quote goes out on the
// bus.
type Publisher struct {
	bus      *Bus
	symbols  []string
	interval time.Duration
	logger   zerolog.Logger

	mu    sync.RWMutex
	state map[string]*symbolState
}

func NewPublisher(bus *Bus, symbols []string, interval time.Duration, logger zerolog.Logger) *Publisher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	state := make(map[string]*symbolState, len(symbols))
	for _, sym := range symbols {
		seed, ok := seedPrices[sym]
		if !ok {
			seed = 100
		}
		state[sym] = &symbolState{price: seed, open: seed}
	}
	return &Publisher{
		bus:      bus,
		symbols:  symbols,
		interval: interval,
		logger:   logger.With().Str("component", "marketdata").Logger(),
		state:    state,
	}
}

// Run ticks until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info().Strs("symbols", p.symbols).Dur("interval", p.interval).Msg("quote publisher started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("quote publisher stopped")
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Publisher) tick() {
	now := time.Now().UnixMilli()
	p.mu.Lock()
	for _, sym := range p.symbols {
		st := p.state[sym]
		// walk up to +-0.2% per tick
		st.price *= 1 + (rand.Float64()-0.5)*0.004
		change := (st.price - st.open) / st.open * 100
		p.bus.Publish(Quote{
			Symbol:    sym,
			Price:     formatPrice(st.price),
			Change24h: strconv.FormatFloat(change, 'f', 2, 64),
			Timestamp: now,
		})
	}
	p.mu.Unlock()
}

// Price returns the current simulated price for a symbol, or false if
// the publisher does not track it.
func (p *Publisher) Price(symbol string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st, ok := p.state[strings.ToUpper(symbol)]
	if !ok {
		return 0, false
	}
	return st.price, true
}

func formatPrice(v float64) string {
	prec := 2
	if v < 10 {
		prec = 4
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
