// Package eventbus publishes best-effort audit events (subscribe, evict,
// tick) to NATS. It is entirely optional: with no URL configured it runs
// in disabled mode and every Publish call is a no-op. Grounded on
// go-server/pkg/nats/client.go's connection/reconnect handling
// (SPEC_FULL.md §10.5).
package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/adred-codev/quote-stream/internal/metrics"
)

// Subjects published by the server. Consumers outside this module should
// treat these as the stable contract.
const (
	SubjectClientSubscribed = "quote.client.subscribed"
	SubjectClientEvicted    = "quote.client.evicted"
	SubjectGeneratorTick    = "quote.generator.tick"
)

// ClientSubscribedEvent is published once a handshake succeeds.
type ClientSubscribedEvent struct {
	RemoteAddr string    `json:"remote_addr"`
	Tickers    []string  `json:"tickers"`
	At         time.Time `json:"at"`
}

// ClientEvictedEvent is published when a sender exits (timeout or error).
type ClientEvictedEvent struct {
	RemoteAddr string    `json:"remote_addr"`
	Reason     string    `json:"reason"`
	At         time.Time `json:"at"`
}

// GeneratorTickEvent is published once per generation cycle.
type GeneratorTickEvent struct {
	QuoteCount int       `json:"quote_count"`
	At         time.Time `json:"at"`
}

// Bus publishes JSON-encoded events to NATS. A Bus returned by Disabled
// never dials out and PublishJSON becomes a no-op,
// so callers do not need to branch on whether an event bus is configured.
type Bus struct {
	conn    *nats.Conn
	logger  *zap.Logger
	metrics *metrics.Registry
}

// Connect dials the NATS server at url. Reconnect attempts and errors are
// logged but never surfaced to the caller: the event bus is audit-only
// and must never affect the data path.
func Connect(url string, logger *zap.Logger, metricsRegistry *metrics.Registry) (*Bus, error) {
	opts := []nats.Option{
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if logger != nil && err != nil {
				logger.Warn("event bus disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			if logger != nil {
				logger.Info("event bus reconnected", zap.String("url", nc.ConnectedUrl()))
			}
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			if logger != nil && err != nil {
				logger.Warn("event bus async error", zap.Error(err))
			}
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: conn, logger: logger, metrics: metricsRegistry}, nil
}

// Disabled returns a Bus whose Publish calls are always no-ops.
func Disabled() *Bus {
	return &Bus{}
}

// Close closes the underlying connection, if any.
func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

// PublishJSON marshals event and publishes it to subject. In disabled mode
// it returns immediately without logging or counting anything. Marshal or
// publish failures only log and increment the EventBusPublishErrors
// counter; they never return an error to the caller, because the event
// bus must never block or fail the data path.
func (b *Bus) PublishJSON(subject string, event any) {
	if b.conn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.fail(subject, err)
		return
	}
	if err := b.conn.Publish(subject, data); err != nil {
		b.fail(subject, err)
	}
}

func (b *Bus) fail(subject string, err error) {
	if b.logger != nil {
		b.logger.Warn("event bus publish failed", zap.String("subject", subject), zap.Error(err))
	}
	if b.metrics != nil {
		b.metrics.EventBusPublishErrors.Inc()
	}
}
