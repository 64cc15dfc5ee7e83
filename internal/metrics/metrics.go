// Package metrics wraps the Prometheus collectors exposed by the quote
// server, following the promauto registration style of
// go-server-3/internal/metrics and go-server/internal/metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps every Prometheus collector the quote server publishes.
type Registry struct {
	ActiveSubscriptions  prometheus.Gauge
	QuotesGenerated      prometheus.Counter
	BatchesBroadcast     prometheus.Counter
	BatchesDropped       prometheus.Counter
	HandshakesAccepted   prometheus.Counter
	HandshakesRejected   prometheus.Counter
	ConnectionsRateLimited prometheus.Counter
	PingTimeouts         prometheus.Counter
	UDPSendErrors        prometheus.Counter
	EventBusPublishErrors prometheus.Counter
}

// NewRegistry creates and registers every collector against the default
// Prometheus registry.
func NewRegistry() *Registry {
	return &Registry{
		ActiveSubscriptions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "quote_server_active_subscriptions",
			Help: "Number of currently subscribed clients.",
		}),
		QuotesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_quotes_generated_total",
			Help: "Total number of individual quotes produced by the generator.",
		}),
		BatchesBroadcast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_batches_broadcast_total",
			Help: "Total number of generator ticks broadcast to the registry.",
		}),
		BatchesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_batches_dropped_total",
			Help: "Total number of per-client batch drops due to a full queue.",
		}),
		HandshakesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_handshakes_accepted_total",
			Help: "Total number of TCP handshakes that resulted in a subscription.",
		}),
		HandshakesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_handshakes_rejected_total",
			Help: "Total number of TCP handshakes rejected (malformed or unknown ticker).",
		}),
		ConnectionsRateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_connections_rate_limited_total",
			Help: "Total number of TCP connections dropped by the connection rate limiter.",
		}),
		PingTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_ping_timeouts_total",
			Help: "Total number of clients evicted for heartbeat silence.",
		}),
		UDPSendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_udp_send_errors_total",
			Help: "Total number of failed UDP sends to subscribed clients.",
		}),
		EventBusPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quote_server_eventbus_publish_errors_total",
			Help: "Total number of failed best-effort NATS audit event publishes.",
		}),
	}
}

// Handler returns an HTTP handler exposing the Prometheus registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}
