package acceptor

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/adred-codev/quote-stream/internal/dispatcher"
	"github.com/adred-codev/quote-stream/internal/protocol"
	"github.com/adred-codev/quote-stream/internal/registry"
)

func TestHandshakeAcceptsKnownTickerAndSubscribes(t *testing.T) {
	tcpListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen tcp: %v", err)
	}
	defer tcpListener.Close()

	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	defer udpConn.Close()

	reg := registry.New(nil)
	disp := dispatcher.New(udpConn, nil)
	go disp.Run()
	defer disp.Stop()

	a := New(Config{
		Listener:      tcpListener,
		UDPConn:       udpConn,
		UDPPublicAddr: udpConn.LocalAddr().String(),
		KnownTickers:  map[string]struct{}{"AAPL": {}},
		Registry:      reg,
		Dispatcher:    disp,
	})
	go a.Run()

	clientUDP, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen client udp: %v", err)
	}
	defer clientUDP.Close()

	tcpConn, err := net.Dial("tcp", tcpListener.Addr().String())
	if err != nil {
		t.Fatalf("dial tcp: %v", err)
	}
	defer tcpConn.Close()

	req := "STREAM udp://" + clientUDP.LocalAddr().String() + " AAPL\n"
	if _, err := tcpConn.Write([]byte(req)); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	tcpConn.SetReadDeadline(time.Now().Add(time.Second))
	resp, err := bufio.NewReader(tcpConn).ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp[:2] != protocol.RespOK {
		t.Fatalf("response = %q, want OK prefix", resp)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if reg.Count() == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected exactly one active subscription after handshake")
}

func TestHandshakeRejectsUnknownTicker(t *testing.T) {
	tcpListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen tcp: %v", err)
	}
	defer tcpListener.Close()

	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	defer udpConn.Close()

	reg := registry.New(nil)
	disp := dispatcher.New(udpConn, nil)
	go disp.Run()
	defer disp.Stop()

	a := New(Config{
		Listener:      tcpListener,
		UDPConn:       udpConn,
		UDPPublicAddr: udpConn.LocalAddr().String(),
		KnownTickers:  map[string]struct{}{"AAPL": {}},
		Registry:      reg,
		Dispatcher:    disp,
	})
	go a.Run()

	tcpConn, err := net.Dial("tcp", tcpListener.Addr().String())
	if err != nil {
		t.Fatalf("dial tcp: %v", err)
	}
	defer tcpConn.Close()

	if _, err := tcpConn.Write([]byte("STREAM udp://127.0.0.1:9 ZZZZ\n")); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	tcpConn.SetReadDeadline(time.Now().Add(time.Second))
	resp, err := bufio.NewReader(tcpConn).ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp[:3] != protocol.RespErr {
		t.Fatalf("response = %q, want ERR prefix", resp)
	}
	if reg.Count() != 0 {
		t.Error("rejected handshake must not create a subscription")
	}
}

func TestPublicUDPAddrSubstitutesWildcardHost(t *testing.T) {
	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	defer udpConn.Close()

	got := PublicUDPAddr(udpConn, "192.168.1.5:7000")
	host, _, err := net.SplitHostPort(got)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	if host != "192.168.1.5" {
		t.Errorf("host = %q, want 192.168.1.5 substituted for wildcard", host)
	}
}
