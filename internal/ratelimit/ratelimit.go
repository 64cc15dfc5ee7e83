// Package ratelimit protects the TCP handshake listener from connection
// floods: a global token bucket bounds total accept rate, and a
// per-source-IP bucket bounds any single peer, grounded on
// ws/internal/shared/limits/connection_rate_limiter.go's two-tier design
// (SPEC_FULL.md §10.3).
package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config controls both rate-limiting tiers.
type Config struct {
	// GlobalRate and GlobalBurst bound aggregate accept rate across all
	// source IPs.
	GlobalRate  rate.Limit
	GlobalBurst int

	// IPRate and IPBurst bound the accept rate from any single source IP.
	IPRate  rate.Limit
	IPBurst int

	// IPIdleTTL is how long a per-IP bucket may sit unused before the
	// cleanup sweep evicts it.
	IPIdleTTL time.Duration
}

// DefaultConfig returns sane defaults: 200 connections/sec globally, 5/sec
// per source IP, with idle per-IP entries evicted after 10 minutes.
func DefaultConfig() Config {
	return Config{
		GlobalRate:  rate.Limit(200),
		GlobalBurst: 400,
		IPRate:      rate.Limit(5),
		IPBurst:     10,
		IPIdleTTL:   10 * time.Minute,
	}
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ConnectionRateLimiter is a two-tier limiter: one global bucket plus one
// bucket per source IP. Allow is safe for concurrent use.
type ConnectionRateLimiter struct {
	cfg    Config
	global *rate.Limiter
	logger *zap.Logger

	mu      sync.Mutex
	perIP   map[string]*ipEntry
	stop    chan struct{}
	cleanup *time.Ticker
}

// New creates a ConnectionRateLimiter and starts its background cleanup
// sweep. Call Stop to release the sweep goroutine.
func New(cfg Config, logger *zap.Logger) *ConnectionRateLimiter {
	l := &ConnectionRateLimiter{
		cfg:     cfg,
		global:  rate.NewLimiter(cfg.GlobalRate, cfg.GlobalBurst),
		logger:  logger,
		perIP:   make(map[string]*ipEntry),
		stop:    make(chan struct{}),
		cleanup: time.NewTicker(cfg.IPIdleTTL / 2),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a new connection attempt from host should be
// accepted. It is checked before the handshake is read, per
// SPEC_FULL.md §4.5 step 1: a rejected attempt gets no response at all.
func (l *ConnectionRateLimiter) Allow(host string) bool {
	if !l.global.Allow() {
		return false
	}

	l.mu.Lock()
	entry, ok := l.perIP[host]
	if !ok {
		entry = &ipEntry{limiter: rate.NewLimiter(l.cfg.IPRate, l.cfg.IPBurst)}
		l.perIP[host] = entry
	}
	entry.lastSeen = time.Now()
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.Allow()
}

func (l *ConnectionRateLimiter) cleanupLoop() {
	for {
		select {
		case <-l.stop:
			l.cleanup.Stop()
			return
		case <-l.cleanup.C:
			l.sweep()
		}
	}
}

func (l *ConnectionRateLimiter) sweep() {
	cutoff := time.Now().Add(-l.cfg.IPIdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for host, entry := range l.perIP {
		if entry.lastSeen.Before(cutoff) {
			delete(l.perIP, host)
		}
	}
	if l.logger != nil {
		l.logger.Debug("rate limiter cleanup swept idle entries", zap.Int("remaining", len(l.perIP)))
	}
}

// Stop terminates the background cleanup sweep.
func (l *ConnectionRateLimiter) Stop() {
	close(l.stop)
}
