package protocol

import (
	"fmt"
	"net"
	"strings"
)

// StreamCommand is the parsed form of a TCP handshake request line:
//
//	STREAM udp://HOST:PORT TICKER1,TICKER2,...\n
type StreamCommand struct {
	UDPAddr *net.UDPAddr
	Tickers []string
}

// ParseError is returned by ParseCommand; its Error() text is exactly the
// reason text the acceptor writes back after "ERR ".
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

func invalidCommand(line string) error {
	return &ParseError{msg: fmt.Sprintf("invalid command format: %s", line)}
}

func invalidAddress(text string) error {
	return &ParseError{msg: fmt.Sprintf("invalid UDP address: %s", text)}
}

func unknownTicker(ticker string) error {
	return &ParseError{msg: fmt.Sprintf("unknown ticker: %s", ticker)}
}

// ParseCommand parses a single handshake request line and validates the
// requested tickers against knownTickers. Tickers are upper-cased,
// deduplicated preserving first-seen order, and must be non-empty and
// fully contained in knownTickers.
func ParseCommand(line string, knownTickers map[string]struct{}) (*StreamCommand, error) {
	trimmed := strings.TrimRight(line, "\r\n")

	parts := strings.SplitN(trimmed, " ", 3)
	if len(parts) != 3 || parts[0] != CmdStream {
		return nil, invalidCommand(trimmed)
	}

	addrToken := parts[1]
	const udpPrefix = "udp://"
	if !strings.HasPrefix(addrToken, udpPrefix) {
		return nil, invalidAddress(addrToken)
	}
	addrText := strings.TrimPrefix(addrToken, udpPrefix)
	udpAddr, err := net.ResolveUDPAddr("udp", addrText)
	if err != nil {
		return nil, invalidAddress(addrText)
	}

	seen := make(map[string]struct{})
	var tickers []string
	for _, raw := range strings.Split(parts[2], ",") {
		t := strings.ToUpper(strings.TrimSpace(raw))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}

	if len(tickers) == 0 {
		return nil, invalidCommand(trimmed)
	}

	for _, t := range tickers {
		if _, ok := knownTickers[t]; !ok {
			return nil, unknownTicker(t)
		}
	}

	return &StreamCommand{UDPAddr: udpAddr, Tickers: tickers}, nil
}

// Serialize renders cmd back into a handshake request line (including the
// trailing "\n"), the inverse of ParseCommand modulo the original
// casing/dedup of the ticker list, which ParseCommand already normalizes.
func Serialize(cmd *StreamCommand) string {
	return fmt.Sprintf("%s udp://%s %s\n", CmdStream, cmd.UDPAddr.String(), strings.Join(cmd.Tickers, ","))
}

// FormatOK renders the handshake success response line for serverUDPAddr.
func FormatOK(serverUDPAddr string) string {
	return fmt.Sprintf("%s %s\n", RespOK, serverUDPAddr)
}

// FormatErr renders the handshake failure response line for reason.
func FormatErr(reason string) string {
	return fmt.Sprintf("%s %s\n", RespErr, reason)
}
