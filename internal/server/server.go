// Package server implements the online duel relay. Two clients join a match
// code; the relay pairs them, forwards round progress between them, and
// declares the first player to finish the winner. Gameplay itself runs
// entirely on the clients.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/baraclan/mathdeck/internal/protocol"
)

// Config holds relay settings
type Config struct {
	Addr string
}

// Server is the relay
type Server struct {
	logger   zerolog.Logger
	cfg      Config
	clock    quartz.Clock
	upgrader websocket.Upgrader

	mu      sync.Mutex
	matches map[string]*match
}

// Option configures the server
type Option func(*Server)

// WithClock injects a clock (tests use a mock)
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// New creates a relay server
func New(logger zerolog.Logger, cfg Config, opts ...Option) *Server {
	s := &Server{
		logger:  logger,
		cfg:     cfg,
		clock:   quartz.NewReal(),
		matches: make(map[string]*match),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The relay carries no credentials; any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the relay's HTTP handler, with the websocket endpoint
// mounted at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("duel relay listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn := newConnection(ws, s.logger)
	go conn.writePump()
	go s.readPump(conn)
}

// readPump drives one connection's protocol: a Join first, then Progress and
// Finished messages relayed into the match.
func (s *Server) readPump(conn *connection) {
	defer func() {
		s.dropConnection(conn)
		conn.close()
	}()

	for {
		_, raw, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.Decode(raw)
		if err != nil {
			conn.sendError("malformed message")
			continue
		}
		if err := s.dispatch(conn, msg); err != nil {
			conn.sendError(err.Error())
		}
	}
}

func (s *Server) dispatch(conn *connection, msg protocol.Message) error {
	switch msg.Type {
	case protocol.TypeJoin:
		var join protocol.Join
		if err := protocol.DecodePayload(msg, &join); err != nil {
			return err
		}
		return s.join(conn, join)
	case protocol.TypeProgress:
		var prog protocol.Progress
		if err := protocol.DecodePayload(msg, &prog); err != nil {
			return err
		}
		return s.progress(conn, prog)
	case protocol.TypeFinished:
		var fin protocol.Finished
		if err := protocol.DecodePayload(msg, &fin); err != nil {
			return err
		}
		return s.finished(conn, fin)
	default:
		return errors.New("unexpected message type")
	}
}

func (s *Server) join(conn *connection, join protocol.Join) error {
	if join.Match == "" || join.Username == "" {
		return errors.New("join requires match and username")
	}

	s.mu.Lock()
	m, ok := s.matches[join.Match]
	if !ok {
		m = newMatch(join.Match, s.clock)
		s.matches[join.Match] = m
	}
	s.mu.Unlock()

	started, err := m.add(conn, join.Username)
	if err != nil {
		return err
	}
	conn.match = m
	s.logger.Info().Str("match", join.Match).Str("user", join.Username).Msg("player joined")

	if started {
		m.start()
		s.logger.Info().Str("match", join.Match).Msg("match started")
	}
	return nil
}

func (s *Server) progress(conn *connection, prog protocol.Progress) error {
	if conn.match == nil {
		return errors.New("not in a match")
	}
	conn.match.relayProgress(conn, prog)
	return nil
}

func (s *Server) finished(conn *connection, fin protocol.Finished) error {
	if conn.match == nil {
		return errors.New("not in a match")
	}
	if conn.match.finish(conn, fin) {
		s.removeMatch(conn.match)
	}
	return nil
}

// dropConnection handles a client going away: an unfinished opponent wins by
// forfeit.
func (s *Server) dropConnection(conn *connection) {
	m := conn.match
	if m == nil {
		return
	}
	if m.forfeit(conn) {
		s.logger.Info().Str("match", m.code).Msg("match ended by forfeit")
	}
	s.removeMatch(m)
}

func (s *Server) removeMatch(m *match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.matches[m.code] == m {
		delete(s.matches, m.code)
	}
}
