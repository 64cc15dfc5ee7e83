package registry

import (
	"testing"

	"github.com/adred-codev/quote-stream/internal/protocol"
)

func sampleBatch(ticker string) protocol.QuoteBatch {
	return protocol.QuoteBatch{{Ticker: ticker, Price: 150.0, Volume: 1000, Timestamp: 0}}
}

func TestBroadcastDeliversToSubscriber(t *testing.T) {
	r := New(nil)
	_, ch := r.Subscribe()

	r.Broadcast(sampleBatch("AAPL"))

	select {
	case got := <-ch:
		if got[0].Ticker != "AAPL" {
			t.Errorf("ticker = %q, want AAPL", got[0].Ticker)
		}
	default:
		t.Fatal("expected batch to be delivered")
	}
}

func TestBroadcastDropsOnFullQueueWithoutBlocking(t *testing.T) {
	r := New(nil)
	_, ch := r.Subscribe()

	for i := 0; i < protocol.QueueCapacity+5; i++ {
		r.Broadcast(sampleBatch("AAPL"))
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			if count != protocol.QueueCapacity {
				t.Errorf("delivered %d batches, want exactly %d (bounded queue)", count, protocol.QueueCapacity)
			}
			return
		}
	}
}

func TestUnsubscribeRemovesAndClosesQueue(t *testing.T) {
	r := New(nil)
	sub, ch := r.Subscribe()

	r.Unsubscribe(sub)
	if r.Count() != 0 {
		t.Errorf("count = %d, want 0", r.Count())
	}

	// Closed channel reads return the zero value with ok=false.
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}

	// Idempotent: calling again must not panic (double close).
	r.Unsubscribe(sub)
}

func TestBroadcastDoesNotBlockOtherSubscribers(t *testing.T) {
	r := New(nil)
	_, slow := r.Subscribe()
	_, fast := r.Subscribe()

	for i := 0; i < protocol.QueueCapacity+1; i++ {
		r.Broadcast(sampleBatch("AAPL"))
	}
	_ = slow // slow consumer never drains; its queue saturates but does not stall broadcast

	select {
	case <-fast:
	default:
		t.Fatal("fast subscriber should still have received batches")
	}
}
