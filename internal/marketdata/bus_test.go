package marketdata

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()
	defer bus.Unsubscribe(a)
	defer bus.Unsubscribe(b)

	bus.Publish(Quote{Symbol: "BTC/USDT", Price: "67000.00"})

	for _, ch := range []chan Quote{a, b} {
		select {
		case q := <-ch:
			if q.Symbol != "BTC/USDT" {
				t.Errorf("symbol = %q", q.Symbol)
			}
		default:
			t.Fatal("subscriber did not receive quote")
		}
	}
}

func TestBusUnsubscribeCloses(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel still open")
	}
	// double unsubscribe must not panic
	bus.Unsubscribe(ch)
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)
	for i := 0; i < 150; i++ {
		bus.Publish(Quote{Symbol: "BTC/USDT"})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want full buffer %d", len(ch), cap(ch))
	}
}

func TestPublisherPrice(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	p := NewPublisher(bus, []string{"BTC/USDT"}, 0, zerolog.Nop())
	if _, ok := p.Price("BTC/USDT"); !ok {
		t.Fatal("expected tracked symbol")
	}
	if _, ok := p.Price("DOGE/USDT"); ok {
		t.Fatal("expected untracked symbol")
	}

	p.tick()
	price, _ := p.Price("BTC/USDT")
	if price <= 0 {
		t.Errorf("price = %f", price)
	}
	select {
	case q := <-sub:
		if q.Symbol != "BTC/USDT" || q.Price == "" {
			t.Errorf("unexpected quote %+v", q)
		}
	default:
		t.Fatal("tick published nothing")
	}
}
