// Package lobby runs the TCP side of the server: it accepts client
// connections, performs the one-byte version handshake, decodes framed
// packets and drives the per-connection session against the room
// registry.
package lobby

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/phira-mp/internal/metrics"
)

// closeFlushTimeout bounds the final best-effort flush of queued frames
// when a connection shuts down.
const closeFlushTimeout = 2 * time.Second

// Conn wraps one client socket with a bounded outbound queue and a
// single writer goroutine. Send never blocks: when the queue is full
// the frame is dropped and the connection stays up. Frames handed to
// Send are shared between connections on broadcasts and must not be
// mutated.
type Conn struct {
	conn net.Conn
	ip   string

	sendCh    chan []byte
	closeCh   chan struct{}
	pumpDone  chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// lastActive holds the unix-nano time of the latest read or write.
	lastActive atomic.Int64

	writeTimeout time.Duration
}

// newConn wraps an accepted socket. The write pump and health loop are
// started by the caller.
func newConn(conn net.Conn, queueSize int, writeTimeout time.Duration) (*Conn, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}

	c := &Conn{
		conn:         conn,
		ip:           host,
		sendCh:       make(chan []byte, queueSize),
		closeCh:      make(chan struct{}),
		pumpDone:     make(chan struct{}),
		writeTimeout: writeTimeout,
	}
	c.touch()
	return c, nil
}

// IP returns the client's remote IP address.
func (c *Conn) IP() string {
	return c.ip
}

// Closed reports whether Close has been called. A silently dead peer
// stays "open" until the health loop or a failed read notices.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// touch records activity for the health loop.
func (c *Conn) touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

func (c *Conn) idleFor() time.Duration {
	return time.Since(time.Unix(0, c.lastActive.Load()))
}

// Send queues a frame for delivery. On overflow the frame is dropped
// and logged; the connection is not torn down for a full queue alone.
func (c *Conn) Send(frame []byte) {
	if c.closed.Load() {
		return
	}
	select {
	case c.sendCh <- frame:
		metrics.PacketsSent.Inc()
	default:
		metrics.DroppedSends.Inc()
		slog.Warn("send queue full, dropping frame", "client", c.ip)
	}
}

// writePump is the dedicated writer goroutine for this connection.
// It batches queued frames into a single writev call when the queue
// runs hot. On a write error it tears the whole connection down so the
// read side does not keep feeding a dead socket.
func (c *Conn) writePump() {
	defer close(c.pumpDone)

	bufs := make(net.Buffers, 0, 64)

	for {
		select {
		case frame := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				slog.Warn("set write deadline failed", "client", c.ip, "error", err)
				c.closeSocket()
				return
			}

			queued := len(c.sendCh)
			if queued == 0 {
				if _, err := c.conn.Write(frame); err != nil {
					slog.Warn("write failed", "client", c.ip, "error", err)
					c.closeSocket()
					return
				}
				c.touch()
				continue
			}

			bufs = bufs[:0]
			bufs = append(bufs, frame)
			for range queued {
				bufs = append(bufs, <-c.sendCh)
			}

			if _, err := bufs.WriteTo(c.conn); err != nil {
				slog.Warn("batch write failed", "client", c.ip, "error", err)
				c.closeSocket()
				return
			}
			c.touch()

		case <-c.closeCh:
			c.flushRemaining()
			return
		}
	}
}

// flushRemaining drains the queue once after close, writing whatever
// fits inside closeFlushTimeout.
func (c *Conn) flushRemaining() {
	if err := c.conn.SetWriteDeadline(time.Now().Add(closeFlushTimeout)); err != nil {
		return
	}
	for {
		select {
		case frame := <-c.sendCh:
			if _, err := c.conn.Write(frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

// healthLoop closes the connection when it has seen no traffic in
// either direction for longer than idleLimit.
func (c *Conn) healthLoop(interval, idleLimit time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if c.idleFor() > idleLimit {
				slog.Warn("connection inactive for too long, closing", "client", c.ip)
				c.Close()
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// CloseAsync signals the writer and health goroutines to stop without
// touching the socket. Safe to call multiple times.
func (c *Conn) CloseAsync() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
	})
}

// closeSocket tears down without awaiting the pump. Only the pump
// itself uses this; everyone else goes through Close.
func (c *Conn) closeSocket() {
	c.CloseAsync()
	c.conn.Close()
}

// Close stops the connection's goroutines and closes the socket. It
// gives the write pump up to closeFlushTimeout to flush queued frames
// first, so a final response still reaches the client.
func (c *Conn) Close() error {
	c.CloseAsync()
	select {
	case <-c.pumpDone:
	case <-time.After(closeFlushTimeout):
	}
	return c.conn.Close()
}
