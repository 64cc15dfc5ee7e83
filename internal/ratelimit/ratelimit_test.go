package ratelimit

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestAllowRespectsPerIPBurst(t *testing.T) {
	cfg := Config{
		GlobalRate:  rate.Limit(1000),
		GlobalBurst: 1000,
		IPRate:      rate.Limit(1),
		IPBurst:     2,
		IPIdleTTL:   time.Minute,
	}
	l := New(cfg, nil)
	defer l.Stop()

	if !l.Allow("10.0.0.1") {
		t.Fatal("first connection should be allowed")
	}
	if !l.Allow("10.0.0.1") {
		t.Fatal("second connection (within burst) should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("third immediate connection should exceed per-IP burst")
	}
}

func TestAllowTracksIPsIndependently(t *testing.T) {
	cfg := Config{
		GlobalRate:  rate.Limit(1000),
		GlobalBurst: 1000,
		IPRate:      rate.Limit(1),
		IPBurst:     1,
		IPIdleTTL:   time.Minute,
	}
	l := New(cfg, nil)
	defer l.Stop()

	if !l.Allow("10.0.0.1") {
		t.Fatal("first IP should be allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("second, distinct IP should be allowed independently")
	}
}

func TestAllowRespectsGlobalBudget(t *testing.T) {
	cfg := Config{
		GlobalRate:  rate.Limit(1),
		GlobalBurst: 1,
		IPRate:      rate.Limit(1000),
		IPBurst:     1000,
		IPIdleTTL:   time.Minute,
	}
	l := New(cfg, nil)
	defer l.Stop()

	if !l.Allow("10.0.0.1") {
		t.Fatal("first connection should be allowed")
	}
	if l.Allow("10.0.0.2") {
		t.Fatal("second connection from a different IP should still exhaust the global budget")
	}
}

func TestSweepEvictsIdleEntries(t *testing.T) {
	cfg := Config{
		GlobalRate:  rate.Limit(1000),
		GlobalBurst: 1000,
		IPRate:      rate.Limit(1),
		IPBurst:     1,
		IPIdleTTL:   time.Minute,
	}
	l := New(cfg, nil)
	defer l.Stop()

	l.Allow("10.0.0.1")
	l.mu.Lock()
	l.perIP["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	l.sweep()

	l.mu.Lock()
	_, ok := l.perIP["10.0.0.1"]
	l.mu.Unlock()
	if ok {
		t.Error("expected idle entry to be evicted by sweep")
	}
}
