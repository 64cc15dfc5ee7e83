package client

import (
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/adred-codev/quote-stream/internal/protocol"
)

// RunPingLoop sends a heartbeat datagram to serverAddr every
// protocol.PingInterval until stop is signaled. It is meant to run on its
// own goroutine; callers should wait for it to return before exiting.
func RunPingLoop(conn *net.UDPConn, serverAddr *net.UDPAddr, stop *ShutdownFlag, logger zerolog.Logger) {
	ticker := time.NewTicker(protocol.PingInterval)
	defer ticker.Stop()

	for !stop.Stopped() {
		if _, err := conn.WriteToUDP(protocol.PingPayload[:], serverAddr); err != nil {
			logger.Warn().Err(err).Msg("failed to send heartbeat")
		}
		<-ticker.C
	}
	logger.Debug().Msg("ping loop exiting")
}
