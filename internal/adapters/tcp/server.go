// Package tcp is the primary transport: newline-delimited JSON over a
// local TCP endpoint.
//
// The server accepts one connection at a time and reads one complete
// command per line; each response is written back as one line before the
// next read. The accept/read loop runs on its own goroutine, never on the
// owner goroutine; all graph access happens through the router's dispatch
// bridge.
package tcp

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/internal/router"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// MaxFrameBytes bounds a single request line. Large batches fit comfortably;
// anything bigger is a malformed client.
const MaxFrameBytes = 8 << 20

// Server owns the listener and the session loop.
type Server struct {
	router   *router.Router
	logger   *slog.Logger
	addr     string
	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	shutdown bool
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a TCP transport bound to addr (e.g. "127.0.0.1:9845").
func NewServer(addr string, r *router.Router, opts ...Option) *Server {
	s := &Server{
		router: r,
		logger: logging.NewNop(),
		addr:   addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and launches the accept loop. Failure to bind
// is fatal at startup; the attempted endpoint is in the error and the log.
func (s *Server) Start(ctx context.Context) error {
	// Go's TCP listener sets SO_REUSEADDR on unix platforms, so a fast
	// restart after a crash does not trip on TIME_WAIT.
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to bind", "addr", s.addr, "err", err)
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.logger.InfoContext(ctx, "listening", "addr", listener.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop(ctx)
	return nil
}

// Addr returns the bound address; valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop closes the listener and waits for the session loop to finish.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	s.mu.Unlock()

	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
}

func (s *Server) stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// acceptLoop serves one connection at a time. A dropped connection simply
// ends the session; there is no other in-progress work to disturb.
func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() || ctx.Err() != nil {
				return
			}
			s.logger.WarnContext(ctx, "accept failed", "err", err)
			continue
		}
		s.serveConn(ctx, conn)
	}
}

// serveConn runs the session: one command in flight at a time.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	s.logger.InfoContext(ctx, "client connected", "remote", remote)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), MaxFrameBytes)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		if s.stopping() || ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *protocol.Response
		cmd, err := protocol.ParseCommand(line)
		if err != nil {
			resp = protocol.Errorf(err)
		} else {
			resp = s.router.Dispatch(ctx, cmd)
		}

		if err := s.writeResponse(writer, resp); err != nil {
			s.logger.WarnContext(ctx, "write failed, dropping connection", "remote", remote, "err", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.WarnContext(ctx, "read failed", "remote", remote, "err", err)
	}
	s.logger.InfoContext(ctx, "client disconnected", "remote", remote)
}

func (s *Server) writeResponse(w *bufio.Writer, resp *protocol.Response) error {
	data, err := resp.Encode()
	if err != nil {
		// Encoding a response should never fail; fall back to a plain error frame.
		data = []byte(`{"status":"error","error":"failed to encode response"}`)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
