package protocol

// StockQuote is one synthetic quote, serialized as a single compact JSON
// object per UDP datagram. The wire field name for the timestamp is
// "timestamp" (not "timestamp_ms") to match the protocol this server
// speaks on the network; it always carries Unix epoch milliseconds.
type StockQuote struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Volume    uint64  `json:"volume"`
	Timestamp uint64  `json:"timestamp"`
}

// QuoteBatch is the unit of fan-out: one generator tick's worth of quotes,
// one per tracked ticker. It is never mutated after the generator returns
// it, so it is safe to share a single slice across every subscriber queue.
type QuoteBatch []StockQuote
