// Package client implements the quote client's side of the protocol:
// the handshake dial, the heartbeat emitter, the UDP receive loop, and
// the tickers-file loader, grounded on the Rust quote-client crate's
// connection.rs/ping.rs/receiver.rs/main.rs (SPEC_FULL.md §10.7).
package client

import "sync/atomic"

// ShutdownFlag is a cooperative stop signal shared between the ping
// emitter goroutine and the receive loop running on the main goroutine,
// set once on Ctrl+C (SIGINT/SIGTERM).
type ShutdownFlag struct {
	stopped atomic.Bool
}

// Stop requests both loops to exit at their next poll.
func (f *ShutdownFlag) Stop() {
	f.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (f *ShutdownFlag) Stopped() bool {
	return f.stopped.Load()
}
