// Package dispatcher centralizes reads on the server's shared UDP socket:
// one goroutine demultiplexes inbound PING datagrams by source address and
// updates the matching client's last-ping timestamp, instead of every
// ClientSender racing to read the same socket (SPEC_FULL.md §4.4a, §9).
package dispatcher

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/adred-codev/quote-stream/internal/protocol"
)

// LastPing is the atomic last-ping timestamp (Unix nanoseconds) for one
// subscription. It is written only by the Dispatcher and read only by the
// owning ClientSender.
type LastPing struct {
	nanos int64
}

// Touch stores the current time as the last-ping timestamp.
func (p *LastPing) Touch() {
	atomic.StoreInt64(&p.nanos, time.Now().UnixNano())
}

// Elapsed returns how long has passed since the last touch.
func (p *LastPing) Elapsed() time.Duration {
	last := atomic.LoadInt64(&p.nanos)
	return time.Since(time.Unix(0, last))
}

// Dispatcher owns the read side of the server's shared UDP socket and
// demultiplexes heartbeats by source address.
type Dispatcher struct {
	conn   *net.UDPConn
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[string]*LastPing

	stop chan struct{}
	done chan struct{}
}

// New creates a Dispatcher that will read from conn once Run is called.
func New(conn *net.UDPConn, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		conn:   conn,
		logger: logger,
		subs:   make(map[string]*LastPing),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register starts tracking addr and returns its LastPing, pre-touched so
// a freshly subscribed client has a full ping-timeout grace period before
// its first heartbeat is due.
func (d *Dispatcher) Register(addr *net.UDPAddr) *LastPing {
	lp := &LastPing{}
	lp.Touch()

	d.mu.Lock()
	d.subs[addr.String()] = lp
	d.mu.Unlock()

	return lp
}

// Unregister stops tracking addr.
func (d *Dispatcher) Unregister(addr *net.UDPAddr) {
	d.mu.Lock()
	delete(d.subs, addr.String())
	d.mu.Unlock()
}

// Run reads datagrams from the shared socket until Stop is called. It
// should be run in its own goroutine.
func (d *Dispatcher) Run() {
	defer close(d.done)

	buf := make([]byte, protocol.UDPBufferSize)
	for {
		select {
		case <-d.stop:
			return
		default:
		}

		n, addr, err := d.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-d.stop:
				return
			default:
			}
			if d.logger != nil {
				d.logger.Debug("heartbeat dispatcher read error", zap.Error(err))
			}
			continue
		}

		if !protocol.IsPingPayload(buf[:n]) {
			continue
		}

		d.mu.RLock()
		lp, ok := d.subs[addr.String()]
		d.mu.RUnlock()
		if ok {
			lp.Touch()
		}
	}
}

// Stop terminates Run and waits for it to return.
func (d *Dispatcher) Stop() {
	close(d.stop)
	_ = d.conn.SetReadDeadline(time.Now())
	<-d.done
}
