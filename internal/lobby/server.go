package lobby

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/udisondev/phira-mp/internal/config"
	"github.com/udisondev/phira-mp/internal/history"
	"github.com/udisondev/phira-mp/internal/i18n"
	"github.com/udisondev/phira-mp/internal/lobby/clientpackets"
	"github.com/udisondev/phira-mp/internal/metrics"
	"github.com/udisondev/phira-mp/internal/phira"
	"github.com/udisondev/phira-mp/internal/protocol"
	"github.com/udisondev/phira-mp/internal/room"
)

// protocolVersion is the only handshake byte the server accepts.
const protocolVersion = 1

// Server accepts lobby client connections on port 12348.
type Server struct {
	cfg      config.Lobby
	catalog  *i18n.Catalog
	fetcher  phira.Fetcher
	registry *room.Registry
	recorder history.Recorder

	online *onlineTable
	sem    *semaphore.Weighted

	listener net.Listener
	mu       sync.Mutex
}

// NewServer wires the lobby server against its collaborators.
func NewServer(cfg config.Lobby, catalog *i18n.Catalog, fetcher phira.Fetcher, registry *room.Registry, recorder history.Recorder) *Server {
	return &Server{
		cfg:      cfg,
		catalog:  catalog,
		fetcher:  fetcher,
		registry: registry,
		recorder: recorder,
		online:   newOnlineTable(),
		sem:      semaphore.NewWeighted(cfg.MaxConnections),
	}
}

// Addr returns the address the server is listening on.
// Returns nil if the server hasn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run begins listening for client connections on the configured address
// and blocks until ctx is cancelled and all handlers have returned.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts connections from the given listener. Used for testing
// with custom listeners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("lobby server started", "address", ln.Addr(), "max_connections", s.cfg.MaxConnections)

	var wg sync.WaitGroup
	s.acceptLoop(ctx, &wg, ln)
	wg.Wait()

	return nil
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("failed to accept new connection", "error", err)
				continue
			}

			if !s.sem.TryAcquire(1) {
				slog.Warn("connection limit reached, rejecting connection", "remote", conn.RemoteAddr())
				conn.Close()
				continue
			}

			// Enable TCP keepalive (detect dead connections)
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				if err := tcpConn.SetKeepAlive(true); err != nil {
					slog.Warn("set keepalive failed", "error", err)
				}
				if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
					slog.Warn("set keepalive period failed", "error", err)
				}
			}

			wg.Go(func() {
				s.handleConnection(ctx, conn)
			})
		}
	}
}

func (s *Server) handleConnection(ctx context.Context, netConn net.Conn) {
	defer s.sem.Release(1)
	defer netConn.Close()

	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	host, _, err := net.SplitHostPort(netConn.RemoteAddr().String())
	if err != nil {
		slog.Error("failed to split host port", "connection", netConn.RemoteAddr(), "error", err)
		return
	}
	slog.Info("new client connection", "remote", host)

	if err := s.handshake(netConn); err != nil {
		slog.Warn("handshake failed", "remote", host, "error", err)
		return
	}

	conn, err := newConn(netConn, s.cfg.SendQueueSize, s.cfg.WriteTimeout)
	if err != nil {
		slog.Error("failed to wrap connection", "remote", host, "error", err)
		return
	}
	go conn.writePump()
	go conn.healthLoop(s.cfg.HealthInterval, s.cfg.InactivityTimeout)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-conn.closeCh:
		}
	}()

	sess := newSession(s, conn)
	defer sess.cleanup()

	s.readLoop(ctx, conn, sess)
}

// handshake reads the one-byte protocol version under its own deadline.
// The server sends nothing back; the first server bytes the client sees
// are its first responses.
func (s *Server) handshake(conn net.Conn) error {
	if err := conn.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout)); err != nil {
		return fmt.Errorf("setting handshake deadline: %w", err)
	}
	var version [1]byte
	if _, err := io.ReadFull(conn, version[:]); err != nil {
		return fmt.Errorf("reading protocol version: %w", err)
	}
	if version[0] != protocolVersion {
		return fmt.Errorf("unsupported protocol version %d", version[0])
	}
	return nil
}

func (s *Server) readLoop(ctx context.Context, conn *Conn, sess *session) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := conn.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
				slog.Warn("set read deadline failed", "client", conn.IP(), "error", err)
				return
			}

			payload, err := protocol.ReadMessage(conn.conn)
			if err != nil {
				if errors.Is(err, io.EOF) {
					slog.Info("client disconnected", "client", conn.IP())
				} else if !conn.Closed() {
					slog.Warn("read failed", "client", conn.IP(), "error", err)
				}
				return
			}
			conn.touch()

			pkt, err := clientpackets.Decode(payload)
			if err != nil {
				slog.Warn("dropping client on codec error", "client", conn.IP(), "error", err)
				return
			}

			if err := sess.handle(ctx, pkt); err != nil {
				slog.Warn("closing connection", "client", conn.IP(), "reason", err)
				return
			}
		}
	}
}
