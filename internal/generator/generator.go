// Package generator produces synthetic stock quotes via a multiplicative
// random walk, one batch per tick.
package generator

import (
	"math/rand"
	"time"

	"github.com/adred-codev/quote-stream/internal/protocol"
)

const (
	minInitialPrice = 10.0
	maxInitialPrice = 500.0
	minWalkFactor   = 0.98
	maxWalkFactor   = 1.02
	minPrice        = 0.01
	minVolume       = 100
	maxVolume       = 10_000
)

// Generator owns the current price of every tracked ticker and produces a
// fresh QuoteBatch on each call to GenerateAll. It is confined to a single
// goroutine; it is not safe for concurrent use.
type Generator struct {
	tickers []string
	prices  map[string]float64
	rng     *rand.Rand
}

// New creates a Generator for tickers, assigning each an initial price
// drawn uniformly from [10.0, 500.0).
func New(tickers []string) *Generator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	prices := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		prices[t] = minInitialPrice + rng.Float64()*(maxInitialPrice-minInitialPrice)
	}
	return &Generator{tickers: tickers, prices: prices, rng: rng}
}

// GenerateAll advances the simulation by one tick: it applies a random
// walk to every ticker's price, then returns a batch with one StockQuote
// per tracked ticker, all sharing a single timestamp.
func (g *Generator) GenerateAll() protocol.QuoteBatch {
	for t, price := range g.prices {
		walked := price * (minWalkFactor + g.rng.Float64()*(maxWalkFactor-minWalkFactor))
		if walked < minPrice {
			walked = minPrice
		}
		g.prices[t] = walked
	}

	timestampMs := uint64(time.Now().UnixMilli())

	batch := make(protocol.QuoteBatch, 0, len(g.tickers))
	for _, t := range g.tickers {
		batch = append(batch, protocol.StockQuote{
			Ticker:    t,
			Price:     g.prices[t],
			Volume:    uint64(minVolume + g.rng.Intn(maxVolume-minVolume)),
			Timestamp: timestampMs,
		})
	}
	return batch
}
