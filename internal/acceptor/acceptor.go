// Package acceptor implements the HandshakeAcceptor: the TCP listener loop
// that turns one "STREAM udp://HOST:PORT TICKER1,TICKER2" request line
// into a live subscription, grounded on
// original_source/crates/quote-server/src/main.rs's inline accept loop and
// adapted to the registry/dispatcher/sender split described in
// SPEC_FULL.md §4.5.
package acceptor

import (
	"bufio"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adred-codev/quote-stream/internal/dispatcher"
	"github.com/adred-codev/quote-stream/internal/eventbus"
	"github.com/adred-codev/quote-stream/internal/metrics"
	"github.com/adred-codev/quote-stream/internal/protocol"
	"github.com/adred-codev/quote-stream/internal/ratelimit"
	"github.com/adred-codev/quote-stream/internal/registry"
	"github.com/adred-codev/quote-stream/internal/sender"
)

// HandshakeReadTimeout bounds how long the acceptor waits for a
// newly-accepted connection to send its request line, so a slow or
// malicious peer cannot hold a goroutine open indefinitely.
const HandshakeReadTimeout = 5 * time.Second

// Acceptor owns the TCP listener and wires each successful handshake into
// the registry, dispatcher, and a dedicated ClientSender.
type Acceptor struct {
	listener     net.Listener
	udpConn      *net.UDPConn
	udpPublicAddr string // the UDP endpoint advertised to clients in "OK ..."
	knownTickers map[string]struct{}

	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	limiter    *ratelimit.ConnectionRateLimiter
	metrics    *metrics.Registry
	bus        *eventbus.Bus
	logger     *zap.Logger
}

// Config bundles everything needed to construct an Acceptor.
type Config struct {
	Listener      net.Listener
	UDPConn       *net.UDPConn
	UDPPublicAddr string
	KnownTickers  map[string]struct{}
	Registry      *registry.Registry
	Dispatcher    *dispatcher.Dispatcher
	Limiter       *ratelimit.ConnectionRateLimiter
	Metrics       *metrics.Registry
	Bus           *eventbus.Bus
	Logger        *zap.Logger
}

// New creates an Acceptor from cfg.
func New(cfg Config) *Acceptor {
	bus := cfg.Bus
	if bus == nil {
		bus = eventbus.Disabled()
	}
	return &Acceptor{
		listener:      cfg.Listener,
		udpConn:       cfg.UDPConn,
		udpPublicAddr: cfg.UDPPublicAddr,
		knownTickers:  cfg.KnownTickers,
		registry:      cfg.Registry,
		dispatcher:    cfg.Dispatcher,
		limiter:       cfg.Limiter,
		metrics:       cfg.Metrics,
		bus:           bus,
		logger:        cfg.Logger,
	}
}

// Run accepts connections until the listener is closed (typically by the
// caller during shutdown, which makes Accept return an error and this
// loop return).
func (a *Acceptor) Run() error {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			return err
		}
		go a.handle(conn)
	}
}

func (a *Acceptor) handle(conn net.Conn) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	}

	if a.limiter != nil && !a.limiter.Allow(host) {
		// Rejected attempts get no response at all, per SPEC_FULL.md §4.5
		// step 1 / §7: silence is the signal.
		if a.metrics != nil {
			a.metrics.ConnectionsRateLimited.Inc()
		}
		conn.Close()
		return
	}

	conn.SetReadDeadline(time.Now().Add(HandshakeReadTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	cmd, err := protocol.ParseCommand(line, a.knownTickers)
	if err != nil {
		a.reject(conn, err.Error())
		return
	}

	if _, err := conn.Write([]byte(protocol.FormatOK(a.udpPublicAddr))); err != nil {
		conn.Close()
		return
	}
	conn.Close() // the TCP connection's only job was the handshake

	sub, queue := a.registry.Subscribe()
	lastPing := a.dispatcher.Register(cmd.UDPAddr)

	if a.metrics != nil {
		a.metrics.HandshakesAccepted.Inc()
	}
	a.bus.PublishJSON(eventbus.SubjectClientSubscribed, eventbus.ClientSubscribedEvent{
		RemoteAddr: cmd.UDPAddr.String(),
		Tickers:    cmd.Tickers,
	})

	s := sender.New(sender.Config{
		Conn:     a.udpConn,
		Dest:     cmd.UDPAddr,
		Tickers:  cmd.Tickers,
		Queue:    queue,
		LastPing: lastPing,
		Metrics:  a.metrics,
		Logger:   a.logger,
		OnExit: func() {
			a.registry.Unsubscribe(sub)
			a.dispatcher.Unregister(cmd.UDPAddr)
			a.bus.PublishJSON(eventbus.SubjectClientEvicted, eventbus.ClientEvictedEvent{
				RemoteAddr: cmd.UDPAddr.String(),
				Reason:     "ping timeout or closed queue",
			})
		},
	})
	go s.Run()
}

func (a *Acceptor) reject(conn net.Conn, reason string) {
	conn.Write([]byte(protocol.FormatErr(reason)))
	conn.Close()
	if a.metrics != nil {
		a.metrics.HandshakesRejected.Inc()
	}
}

// PublicUDPAddr substitutes the host portion of listenAddr for a wildcard
// UDP bind address, so clients never receive "OK 0.0.0.0:...".
// Grounded on the wildcard-address note in SPEC_FULL.md §4.5.
func PublicUDPAddr(udpConn *net.UDPConn, tcpListenAddr string) string {
	local := udpConn.LocalAddr().(*net.UDPAddr)
	if !local.IP.IsUnspecified() {
		return local.String()
	}

	host, _, err := net.SplitHostPort(tcpListenAddr)
	if err != nil || host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, portOf(local))
}

func portOf(addr *net.UDPAddr) string {
	parts := strings.Split(addr.String(), ":")
	return parts[len(parts)-1]
}
