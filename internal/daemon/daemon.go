// Package daemon runs the Unix-domain socket server SPEC_FULL.md §11.1
// names: one goroutine per connection, each framing a line-delimited JSON
// request/response protocol (spec §6).
//
// The scanner-driven line loop is grounded on dm-vev-OpenClaude's
// cmd/claude/stream_json_input.go (readStreamInputWithControl): a
// bufio.Scanner over one line at a time, each line unmarshaled into a
// map[string]any and dispatched by its "type"/"command" field. Here that
// shape is adapted from a one-shot input stream into a persistent,
// per-connection request/response loop.
package daemon

import (
	"bufio"
	"encoding/json"
	"net"
	"os"

	"github.com/rs/zerolog"
)

// Handler dispatches one decoded request to its command implementation,
// returning the response envelope to write back.
type Handler func(req map[string]any) map[string]any

// Server listens on a Unix-domain socket and serves Handler over a
// line-delimited JSON protocol.
type Server struct {
	SocketPath string
	Handle     Handler
	Log        zerolog.Logger
}

// ListenAndServe removes any stale socket file, listens, and serves
// connections until the listener is closed or Accept fails terminally.
func (s *Server) ListenAndServe() error {
	_ = os.Remove(s.SocketPath)

	listener, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return err
	}
	defer listener.Close()

	s.Log.Info().Str("socket", s.SocketPath).Msg("listening")

	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		go s.serveConn(conn)
	}
}

// serveConn reads one JSON request per line and writes one JSON response
// per line, until the peer closes the connection or sends an unparsable
// line (which ends the connection after reporting it, rather than
// attempting to resynchronize).
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			_ = encoder.Encode(map[string]any{"ok": false, "error": "bad_json", "detail": err.Error()})
			return
		}

		resp := s.dispatch(req)
		if err := encoder.Encode(resp); err != nil {
			s.Log.Warn().Err(err).Msg("write response failed")
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.Log.Warn().Err(err).Msg("connection read failed")
	}
}

// dispatch calls Handle, recovering a panic into an internal_error response
// (spec §9's exception-vs-result boundary: only I/O/subprocess panics should
// ever unwind this far, and they're turned into a result here rather than
// killing the connection's goroutine).
func (s *Server) dispatch(req map[string]any) (resp map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error().Interface("panic", r).Msg("request handler panicked")
			resp = map[string]any{"ok": false, "error": "internal_error"}
		}
	}()
	return s.Handle(req)
}
