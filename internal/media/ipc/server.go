package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
	"github.com/jfmyers9/mediakeys/internal/wire"
)

const writeTimeout = 5 * time.Second

// Server is a media.Controls backend listening on a Unix socket
type Server struct {
	path   string
	logger zerolog.Logger

	mu       sync.Mutex
	handler  media.Handler
	listener net.Listener
	conns    map[net.Conn]struct{}
	state    State
	closed   bool

	wg sync.WaitGroup
}

// NewServer creates a session server for the socket at path.
// Nothing listens until Attach is called.
func NewServer(path, name, platform string, logger zerolog.Logger) *Server {
	return &Server{
		path:   path,
		logger: logger.With().Str("component", "ipc").Logger(),
		conns:  make(map[net.Conn]struct{}),
		state: State{
			Name:     name,
			Platform: platform,
			Status:   media.StatusPlaying,
		},
	}
}

// Path returns the socket path
func (s *Server) Path() string {
	return s.path
}

// Attach registers the handler and starts accepting connections
func (s *Server) Attach(h media.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &media.RegistrationError{Backend: "ipc", Err: media.ErrNoSession}
	}
	if s.handler != nil {
		return media.ErrAlreadyAttached
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return &media.RegistrationError{Backend: "ipc", Err: fmt.Errorf("create socket directory: %w", err)}
	}
	if err := removeStale(s.path); err != nil {
		return &media.RegistrationError{Backend: "ipc", Err: err}
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return &media.RegistrationError{Backend: "ipc", Err: fmt.Errorf("listen on %s: %w", s.path, err)}
	}

	s.handler = h
	s.listener = ln
	s.state.Attached = true

	s.wg.Add(1)
	go s.serve(ln)

	s.logger.Info().Str("socket", s.path).Msg("Listening for media control events")
	return nil
}

// removeStale deletes a socket file left behind by a previous run.
// A socket that still accepts connections belongs to a live session.
func removeStale(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err == nil {
		conn.Close()
		return fmt.Errorf("another session is already listening on %s", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

// SetPlayback publishes the playback status to connected clients
func (s *Server) SetPlayback(status media.PlaybackStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.listener == nil {
		return media.ErrNoSession
	}
	s.state.Status = status
	return nil
}

// SetMetadata publishes the track metadata to connected clients
func (s *Server) SetMetadata(md media.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.listener == nil {
		return media.ErrNoSession
	}
	s.state.Metadata = md
	return nil
}

// Close stops the listener, drops open connections and removes the socket
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.state.Attached = false
	ln := s.listener
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()

	if ln != nil {
		if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}

func (s *Server) serve(ln net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("Accept failed")
			time.Sleep(100 * time.Millisecond)
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		op, payload, err := wire.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.Debug().Err(err).Msg("Connection read failed")
			}
			return
		}

		switch op {
		case wire.OpHandshake:
			var hs handshake
			if err := json.Unmarshal(payload, &hs); err != nil || hs.Version != protocolVersion {
				s.reply(conn, errorReply("", "", CodeBadRequest, "unsupported handshake"))
				return
			}
			s.logger.Debug().Str("client", hs.ClientID).Msg("Client connected")
			state := s.snapshot()
			s.reply(conn, response{Cmd: CmdDispatch, Evt: EvtReady, Data: responseData{State: &state}})
		case wire.OpFrame:
			s.reply(conn, s.handleRequest(payload))
		case wire.OpClose:
			return
		default:
			s.reply(conn, errorReply("", "", CodeBadRequest, fmt.Sprintf("unknown opcode %d", op)))
		}
	}
}

func (s *Server) handleRequest(payload []byte) response {
	var req request
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorReply("", "", CodeBadRequest, "malformed request")
	}

	switch req.Cmd {
	case CmdDispatch:
		e, err := media.ParseEvent(req.Args.Event)
		if err != nil {
			return errorReply(req.Cmd, req.Nonce, CodeBadRequest, err.Error())
		}
		s.mu.Lock()
		h := s.handler
		s.mu.Unlock()
		if h == nil {
			return errorReply(req.Cmd, req.Nonce, CodeNoHandler, "no handler attached")
		}
		h(e)
		return response{Cmd: req.Cmd, Evt: EvtOK, Nonce: req.Nonce}
	case CmdGetState:
		state := s.snapshot()
		return response{Cmd: req.Cmd, Evt: EvtOK, Nonce: req.Nonce, Data: responseData{State: &state}}
	default:
		return errorReply(req.Cmd, req.Nonce, CodeUnknownCommand, fmt.Sprintf("unknown command %q", req.Cmd))
	}
}

func (s *Server) snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Server) reply(conn net.Conn, resp response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode reply")
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := wire.WriteFrame(conn, wire.OpFrame, payload); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write reply")
	}
}

func errorReply(cmd, nonce string, code int, msg string) response {
	return response{
		Cmd:   cmd,
		Evt:   EvtError,
		Nonce: nonce,
		Data:  responseData{Code: code, Message: msg},
	}
}
