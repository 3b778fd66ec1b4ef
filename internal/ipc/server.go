package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
)

// Handler processes one request and returns the response to send.
type Handler func(Request) Response

// Server accepts control connections on a unix socket and dispatches
// requests to a handler. One request per line; the connection stays open
// for follow-up requests.
type Server struct {
	path    string
	handler Handler
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// NewServer builds a server for the given socket path.
func NewServer(path string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{path: path, handler: handler, logger: logger}
}

// Start binds the socket and serves connections on a background goroutine.
// A stale socket file from a previous run is removed first.
func (s *Server) Start() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("failed to restrict socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go s.acceptLoop(ln)
	s.logger.Info("control socket listening", "path", s.path)
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := enc.Encode(Fail("malformed request: " + err.Error())); err != nil {
				return
			}
			continue
		}

		resp := s.handler(req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	os.Remove(s.path)
}
