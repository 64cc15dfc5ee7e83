package client

import (
	"encoding/json"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adred-codev/quote-stream/internal/protocol"
)

// RunReceiveLoop reads quote datagrams from conn until stop is signaled,
// invoking onQuote for each successfully decoded StockQuote. It runs on
// the calling goroutine (typically main) and returns once stopped, so the
// caller can wait for the ping goroutine to finish before exiting.
func RunReceiveLoop(conn *net.UDPConn, stop *ShutdownFlag, logger zerolog.Logger, onQuote func(protocol.StockQuote)) {
	buf := make([]byte, protocol.UDPBufferSize)
	for !stop.Stopped() {
		conn.SetReadDeadline(time.Now().Add(protocol.ClientReceiveTimeout))

		n, err := conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			logger.Warn().Err(err).Msg("udp read error")
			continue
		}

		var q protocol.StockQuote
		if err := json.Unmarshal(buf[:n], &q); err != nil {
			logger.Debug().Err(err).Msg("failed to decode quote")
			continue
		}
		onQuote(q)
	}
	logger.Debug().Msg("receive loop exiting")
}

// DefaultQuoteHandler writes each received quote's ticker on its own line
// to stdout and logs the ticker, price and volume at info level.
func DefaultQuoteHandler(logger zerolog.Logger) func(protocol.StockQuote) {
	return func(q protocol.StockQuote) {
		os.Stdout.WriteString(q.Ticker + "\n")
		logger.Info().
			Str("ticker", q.Ticker).
			Float64("price", q.Price).
			Uint64("volume", q.Volume).
			Msg("quote received")
	}
}
