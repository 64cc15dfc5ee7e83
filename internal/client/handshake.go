package client

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/adred-codev/quote-stream/internal/protocol"
)

// HandshakeTimeout bounds the TCP dial and request/response round trip.
const HandshakeTimeout = 5 * time.Second

// Handshake dials the server's TCP endpoint, sends a STREAM request for
// udpAddr/tickers, and returns the server's advertised UDP endpoint on
// success.
func Handshake(serverAddr string, udpAddr *net.UDPAddr, tickers []string) (string, error) {
	conn, err := net.DialTimeout("tcp", serverAddr, HandshakeTimeout)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", serverAddr, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(HandshakeTimeout))

	cmd := &protocol.StreamCommand{UDPAddr: udpAddr, Tickers: tickers}
	if _, err := conn.Write([]byte(protocol.Serialize(cmd))); err != nil {
		return "", fmt.Errorf("send handshake: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read handshake response: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")

	parts := strings.SplitN(line, " ", 2)
	switch {
	case len(parts) == 2 && parts[0] == protocol.RespOK:
		return parts[1], nil
	case len(parts) == 2 && parts[0] == protocol.RespErr:
		return "", fmt.Errorf("server rejected handshake: %s", parts[1])
	default:
		return "", fmt.Errorf("malformed handshake response: %q", line)
	}
}
