package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"

	"gato/pkg/http"
)

// ErrServerClosed is returned by Serve and ListenAndServe after Shutdown.
var ErrServerClosed = errors.New("server: closed")

// Server accepts TCP connections and serves one request per connection.
type Server struct {
	// ConnState, if set, is called on every connection state change. It is
	// called from the connection's goroutine.
	ConnState func(net.Conn, ConnState)

	cfg     Config
	handler http.Handler
	log     logrus.FieldLogger

	// sem bounds live connections when cfg.MaxConns > 0.
	sem    chan struct{}
	conns  *xsync.MapOf[uint64, *conn]
	nextID atomic.Uint64
	wg     sync.WaitGroup

	mu     sync.Mutex
	ln     net.Listener
	closed bool
	done   chan struct{}
}

// New creates a server that dispatches every request to handler. The
// handler is shared by all connections.
func New(cfg Config, handler http.Handler, log logrus.FieldLogger) *Server {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = http.DefaultChunkSize
	}
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		cfg:     cfg,
		handler: handler,
		log:     log,
		conns:   xsync.NewMapOf[uint64, *conn](),
		done:    make(chan struct{}),
	}
	if cfg.MaxConns > 0 {
		s.sem = make(chan struct{}, cfg.MaxConns)
	}
	return s
}

// ListenAndServe binds the configured port on all interfaces and serves
// connections. A bind failure is returned immediately.
func (s *Server) ListenAndServe() error {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln and handles each one on its own
// goroutine. Accept errors are logged and do not stop the loop. Serve
// returns ErrServerClosed once Shutdown has been called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()

	s.log.WithField("addr", ln.Addr().String()).Info("server listening")

	var backoff time.Duration
	for {
		if !s.acquire() {
			return ErrServerClosed
		}
		rwc, err := ln.Accept()
		if err != nil {
			s.release()
			if s.shuttingDown() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			s.log.WithError(err).WithField("retry", backoff).Error("accept failed")
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		c := newConn(s, s.nextID.Add(1), rwc)
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			rwc.Close()
			s.release()
			return ErrServerClosed
		}
		s.wg.Add(1)
		s.conns.Store(c.id, c)
		s.mu.Unlock()

		c.log.Info("new connection")
		go func() {
			defer s.finish(c)
			c.serve()
		}()
	}
}

// dispatch calls the handler, turning a panic or a nil response into a
// 500 so that a faulty handler only affects its own connection.
func (s *Server) dispatch(req *http.Request, log logrus.FieldLogger) (resp *http.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", rec).Error("handler panicked")
			resp = http.Error(http.StatusInternalServerError)
		}
	}()
	resp = s.handler.Handle(req)
	if resp == nil {
		log.Error("handler returned no response")
		resp = http.Error(http.StatusInternalServerError)
	}
	return resp
}

func (s *Server) finish(c *conn) {
	s.conns.Delete(c.id)
	s.release()
	s.wg.Done()
}

// acquire takes a connection slot, blocking while MaxConns connections
// are live. It reports false if the server shut down while waiting.
func (s *Server) acquire() bool {
	if s.sem == nil {
		return true
	}
	select {
	case s.sem <- struct{}{}:
		return true
	case <-s.done:
		return false
	}
}

func (s *Server) release() {
	if s.sem != nil {
		<-s.sem
	}
}

func (s *Server) shuttingDown() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting connections and waits for live connections to
// finish. If ctx expires first, the remaining connections are closed and
// ctx.Err() is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	var lnErr error
	if !s.closed {
		s.closed = true
		close(s.done)
		if s.ln != nil {
			lnErr = s.ln.Close()
		}
	}
	s.mu.Unlock()

	idle := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return lnErr
	case <-ctx.Done():
		s.conns.Range(func(id uint64, c *conn) bool {
			c.log.WithField("state", c.getState()).Warn("closing connection at shutdown")
			c.rwc.Close()
			return true
		})
		return ctx.Err()
	}
}

// Addr returns the address of the listener, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveConns returns the number of connections being served.
func (s *Server) ActiveConns() int {
	return s.conns.Size()
}
