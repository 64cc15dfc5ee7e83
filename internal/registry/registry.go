// Package registry implements the ClientRegistry: the set of bounded
// per-client queues the generator broadcasts into, grounded on the
// sharded-hub shape of go-server-3/internal/session/hub.go and the
// crossbeam registry in original_source/crates/quote-server/src/client_sender.rs,
// adapted to Go channels and the quote-batch fan-out described in
// SPEC_FULL.md §4.3.
package registry

import (
	"sync"

	"github.com/adred-codev/quote-stream/internal/metrics"
	"github.com/adred-codev/quote-stream/internal/protocol"
)

// Subscription is the producer-side handle the registry holds for one
// subscribed client: its queue and an identifier used to unsubscribe it.
type Subscription struct {
	id    uint64
	queue chan protocol.QuoteBatch
}

// Registry holds every live subscription's bounded queue and fans batches
// out to them on each broadcast. A single mutex protects the subscription
// list; it is held only for the duration of Subscribe/Unsubscribe/Broadcast
// and never across I/O, per SPEC_FULL.md §5.
type Registry struct {
	mu      sync.Mutex
	nextID  uint64
	subs    map[uint64]*Subscription
	metrics *metrics.Registry
}

// New creates an empty Registry. metricsRegistry may be nil in tests.
func New(metricsRegistry *metrics.Registry) *Registry {
	return &Registry{
		subs:    make(map[uint64]*Subscription),
		metrics: metricsRegistry,
	}
}

// Subscribe creates a new bounded queue, stores its producer half, and
// returns the subscription (for later Unsubscribe) and the consumer
// channel the caller should read from.
func (r *Registry) Subscribe() (*Subscription, <-chan protocol.QuoteBatch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub := &Subscription{
		id:    r.nextID,
		queue: make(chan protocol.QuoteBatch, protocol.QueueCapacity),
	}
	r.subs[sub.id] = sub
	if r.metrics != nil {
		r.metrics.ActiveSubscriptions.Inc()
	}
	return sub, sub.queue
}

// Unsubscribe removes and closes sub's queue. It is idempotent: calling it
// twice, or with a subscription already removed, is a no-op.
func (r *Registry) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub.id]; !ok {
		return
	}
	delete(r.subs, sub.id)
	close(sub.queue)
	if r.metrics != nil {
		r.metrics.ActiveSubscriptions.Dec()
	}
}

// Broadcast offers batch to every live subscription's queue with a
// non-blocking send. A full queue simply drops the batch for that client
// (loss, not stall) — eviction is never driven by broadcast, only by the
// client sender's own ping-timeout/queue-closed logic (SPEC_FULL.md §4.3,
// §7).
func (r *Registry) Broadcast(batch protocol.QuoteBatch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.subs {
		select {
		case sub.queue <- batch:
		default:
			if r.metrics != nil {
				r.metrics.BatchesDropped.Inc()
			}
		}
	}

	if r.metrics != nil {
		r.metrics.BatchesBroadcast.Inc()
		r.metrics.QuotesGenerated.Add(float64(len(batch)))
	}
}

// Count returns the number of currently live subscriptions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
