package client

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adred-codev/quote-stream/internal/protocol"
)

func TestRunReceiveLoopDecodesQuotesUntilStopped(t *testing.T) {
	clientConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer clientConn.Close()

	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer serverConn.Close()

	stop := &ShutdownFlag{}
	received := make(chan protocol.StockQuote, 1)
	done := make(chan struct{})
	go func() {
		RunReceiveLoop(clientConn, stop, zerolog.Nop(), func(q protocol.StockQuote) {
			received <- q
		})
		close(done)
	}()

	want := protocol.StockQuote{Ticker: "AAPL", Price: 150.5, Volume: 1000, Timestamp: 123}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := serverConn.WriteToUDP(data, clientConn.LocalAddr().(*net.UDPAddr)); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-received:
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("quote never delivered to handler")
	}

	stop.Stop()
	select {
	case <-done:
	case <-time.After(protocol.ClientReceiveTimeout + time.Second):
		t.Fatal("receive loop did not exit after Stop")
	}
}
