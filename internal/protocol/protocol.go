// Package protocol defines the wire vocabulary shared by the quote server
// and quote client: the handshake tokens, the heartbeat payload, the
// timing constants, and the StockQuote record itself.
package protocol

import "time"

const (
	// CmdStream is the single command token accepted on the TCP handshake.
	CmdStream = "STREAM"

	// RespOK and RespErr are the two response-line prefixes the acceptor
	// ever writes.
	RespOK  = "OK"
	RespErr = "ERR"

	// PingInterval is how often the client sends a heartbeat.
	PingInterval = 2 * time.Second

	// PingTimeout is how long the server waits without a heartbeat before
	// considering a client dead.
	PingTimeout = 5 * time.Second

	// GenerationInterval is the generator tick period (10 Hz).
	GenerationInterval = 100 * time.Millisecond

	// UDPBufferSize bounds every UDP read buffer; a server-to-client
	// datagram must fit in this many bytes.
	UDPBufferSize = 4096

	// SenderPollInterval is the ClientSender's receive-with-timeout and
	// ping-timeout check cadence.
	SenderPollInterval = 50 * time.Millisecond

	// ClientReceiveTimeout bounds the client's UDP read so the shutdown
	// flag is checked promptly.
	ClientReceiveTimeout = 500 * time.Millisecond

	// QueueCapacity is the bounded size of each per-client batch queue.
	QueueCapacity = 64
)

// PingPayload is the exact 4-byte heartbeat datagram clients send.
var PingPayload = [4]byte{'P', 'I', 'N', 'G'}

// IsPingPayload reports whether data is exactly the heartbeat payload.
func IsPingPayload(data []byte) bool {
	if len(data) != len(PingPayload) {
		return false
	}
	return data[0] == PingPayload[0] && data[1] == PingPayload[1] &&
		data[2] == PingPayload[2] && data[3] == PingPayload[3]
}
