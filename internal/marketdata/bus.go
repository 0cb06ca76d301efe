package marketdata

import (
	"sync"
)

// Quote is one observation of the simulated feed.
type Quote struct {
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Timestamp int64  `json:"ts"`
}

// Bus fans quotes out to stream subscribers. A subscriber that falls
// behind drops quotes instead of stalling the publisher; the next tick
// supersedes anything missed.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Quote]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Quote]struct{})}
}

func (b *Bus) Subscribe() chan Quote {
	ch := make(chan Quote, 100)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(ch chan Quote) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(q Quote) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- q:
		default:
		}
	}
	b.mu.RUnlock()
}
