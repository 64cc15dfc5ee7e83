// Package sender implements the per-subscriber ClientSender worker:
// dequeue a batch, filter by ticker, serialize to JSON, send one UDP
// datagram per matching quote, and watch the subscription's last-ping
// timestamp for heartbeat timeout. Grounded on
// original_source/crates/quote-server/src/client_sender.rs's
// run_client_sender, adapted to the centralized HeartbeatDispatcher design
// described in SPEC_FULL.md §4.4/§4.4a/§9.
package sender

import (
	"encoding/json"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/adred-codev/quote-stream/internal/dispatcher"
	"github.com/adred-codev/quote-stream/internal/metrics"
	"github.com/adred-codev/quote-stream/internal/protocol"
)

// Sender is one subscriber's worker: it owns the consumer half of its
// registry queue and a reference to its subscription's last-ping
// timestamp. It runs until a ping timeout, the queue closes, or its
// Stop method is called.
type Sender struct {
	conn       *net.UDPConn
	dest       *net.UDPAddr
	tickers    map[string]struct{}
	queue      <-chan protocol.QuoteBatch
	lastPing   *dispatcher.LastPing
	metrics    *metrics.Registry
	logger     *zap.Logger
	onExit     func()
	stopManual chan struct{}
}

// Config bundles everything a Sender needs to run.
type Config struct {
	Conn     *net.UDPConn
	Dest     *net.UDPAddr
	Tickers  []string
	Queue    <-chan protocol.QuoteBatch
	LastPing *dispatcher.LastPing
	Metrics  *metrics.Registry
	Logger   *zap.Logger
	// OnExit is invoked exactly once when Run returns, regardless of
	// exit reason (ping timeout, queue closed, or manual Stop). It is
	// used by the caller to unsubscribe the registry queue and
	// unregister the dispatcher entry.
	OnExit func()
}

// New creates a Sender from cfg.
func New(cfg Config) *Sender {
	set := make(map[string]struct{}, len(cfg.Tickers))
	for _, t := range cfg.Tickers {
		set[t] = struct{}{}
	}
	return &Sender{
		conn:       cfg.Conn,
		dest:       cfg.Dest,
		tickers:    set,
		queue:      cfg.Queue,
		lastPing:   cfg.LastPing,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		onExit:     cfg.OnExit,
		stopManual: make(chan struct{}),
	}
}

// Stop requests the Run loop to exit promptly. It is safe to call at most
// once.
func (s *Sender) Stop() {
	close(s.stopManual)
}

// Run executes the sender's main loop until exit. It should be called in
// its own goroutine; OnExit fires before Run returns.
func (s *Sender) Run() {
	defer func() {
		if s.onExit != nil {
			s.onExit()
		}
	}()

	ticker := time.NewTicker(protocol.SenderPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopManual:
			return

		case batch, ok := <-s.queue:
			if !ok {
				if s.logger != nil {
					s.logger.Info("broadcast queue closed, exiting", zap.String("dest", s.dest.String()))
				}
				return
			}
			s.sendBatch(batch)

		case <-ticker.C:
			// fall through to the ping-timeout check below
		}

		if s.lastPing.Elapsed() > protocol.PingTimeout {
			if s.logger != nil {
				s.logger.Warn("ping timeout, disconnecting client", zap.String("dest", s.dest.String()))
			}
			if s.metrics != nil {
				s.metrics.PingTimeouts.Inc()
			}
			return
		}
	}
}

func (s *Sender) sendBatch(batch protocol.QuoteBatch) {
	for _, q := range batch {
		if _, ok := s.tickers[q.Ticker]; !ok {
			continue
		}
		data, err := json.Marshal(q)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to serialize quote", zap.Error(err))
			}
			continue
		}
		if _, err := s.conn.WriteToUDP(data, s.dest); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to send quote", zap.String("dest", s.dest.String()), zap.Error(err))
			}
			if s.metrics != nil {
				s.metrics.UDPSendErrors.Inc()
			}
		}
	}
}
