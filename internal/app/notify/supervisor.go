/*
Package notify contains the realtime notification client for the seat-booking dashboard.

This file defines the ConnectionSupervisor: the owner of the single transport
connection, its state machine, and the bounded reconnection budget. A
monotonically increasing connection generation tags every read pump, frame,
and retry so anything from a superseded connection is detected and ignored.
*/
package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"seatnotify/internal/configs"
	"seatnotify/internal/pkg/errs"
	"seatnotify/internal/pkg/logx"
)

// ConnState is the connection lifecycle state. Exactly one instance exists,
// owned exclusively by the Supervisor.
type ConnState int32

const (
	StateIdle ConnState = iota
	StateAuthenticating
	StateConnected
	StateReconnecting
	StateDisconnected
	StateFailed
)

// String returns the state name for logs and status signals.
func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthenticating:
		return "authenticating"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Conn abstracts the half of a WebSocket connection the client needs. The
// gorilla *websocket.Conn satisfies it; tests substitute a scripted fake.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer establishes the transport connection. A single transport mechanism
// is enforced: WebSocket, no protocol fallback.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

// WebsocketDialer is the production Dialer, backed by gorilla/websocket.
type WebsocketDialer struct {
	// HandshakeTimeout caps the dial. Zero means the gorilla default.
	HandshakeTimeout time.Duration

	// Jar carries session cookies alongside the bearer token (credentialed
	// connections).
	Jar http.CookieJar
}

// Dial implements Dialer.
func (d *WebsocketDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
		Jar:              d.Jar,
		Proxy:            http.ProxyFromEnvironment,
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}

	return conn, nil
}

// inboundFrame is one raw message delivered by a read pump, tagged with the
// generation of the connection it arrived on.
type inboundFrame struct {
	gen  uint64
	data []byte
}

// connLoss reports a read pump terminating, tagged the same way.
type connLoss struct {
	gen uint64
	err error
}

// Supervisor owns the transport connection lifecycle. All methods except
// State are called from the single client loop goroutine.
type Supervisor struct {
	cfg    configs.ClientConfig
	dialer Dialer

	// frames and losses feed the client loop; done unblocks pump sends when
	// the loop has exited.
	frames chan<- inboundFrame
	losses chan<- connLoss
	done   <-chan struct{}

	// mu guards state for external observers; transitions themselves are
	// serialized by the client loop.
	mu    sync.Mutex
	state ConnState

	conn     Conn
	gen      uint64
	attempts int

	logger zerolog.Logger
}

// NewSupervisor constructs a Supervisor in the Idle state.
func NewSupervisor(cfg configs.ClientConfig, dialer Dialer, frames chan<- inboundFrame, losses chan<- connLoss, done <-chan struct{}) *Supervisor {
	return &Supervisor{
		cfg:    cfg,
		dialer: dialer,
		frames: frames,
		losses: losses,
		done:   done,
		state:  StateIdle,
		logger: logx.Logger().With().Str("component", "Supervisor").Logger(),
	}
}

// State returns the current connection state. Safe for concurrent use.
func (s *Supervisor) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(next ConnState) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	if prev != next {
		s.logger.Debug().
			Str("from", prev.String()).
			Str("to", next.String()).
			Msg("Connection state transition.")
	}
}

// Generation returns the current connection generation. Frames, losses, and
// retry timers carrying an older generation are stale.
func (s *Supervisor) Generation() uint64 {
	return s.gen
}

// Conn returns the live connection, or nil when not connected.
func (s *Supervisor) Conn() Conn {
	return s.conn
}

// Connect performs a single authenticated connect attempt for the identity.
// An empty auth token fails fast with ErrAuthTokenMissing and is never
// retried. A transport failure transitions to Reconnecting and leaves retry
// scheduling to the caller.
func (s *Supervisor) Connect(ctx context.Context, identity *Identity) *errs.CustomError {
	if identity == nil || identity.AuthToken == "" {
		s.setState(StateFailed)
		return errs.NewError(errs.ErrAuthTokenMissing)
	}

	s.gen++
	s.setState(StateAuthenticating)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+identity.AuthToken)

	dialCtx := ctx
	if s.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
		defer cancel()
	}

	conn, err := s.dialer.Dial(dialCtx, s.cfg.StreamURL, header)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", s.cfg.StreamURL).Msg("Dial failed.")
		s.setState(StateReconnecting)
		return errs.NewError(errs.ErrTransportDial)
	}

	s.conn = conn
	s.attempts = 0
	s.setState(StateConnected)

	go s.readPump(s.gen, conn)

	s.logger.Info().Uint64("generation", s.gen).Msg("Connected to event stream.")
	return nil
}

// Disconnect tears the connection down from any state. Idempotent: repeated
// calls once Disconnected are no-ops. The generation bump invalidates any
// read pump or retry timer belonging to the torn-down connection.
func (s *Supervisor) Disconnect() {
	if s.State() == StateDisconnected && s.conn == nil {
		return
	}

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Connection close error during disconnect.")
		}
		s.conn = nil
	}

	s.gen++
	s.attempts = 0
	s.setState(StateDisconnected)
}

// MarkLost records an unexpected connection loss for the current generation:
// the connection is dropped and the state moves to Reconnecting. Retry
// scheduling stays with the caller.
func (s *Supervisor) MarkLost() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	s.gen++
	s.setState(StateReconnecting)
}

// ConsumeAttempt takes one unit of the reconnection budget. When the budget
// is spent it transitions to Failed and reports false; automatic retrying
// must then stop until an explicit new Connect resets the counter.
func (s *Supervisor) ConsumeAttempt() bool {
	if s.attempts >= s.cfg.ReconnectAttempts {
		s.setState(StateFailed)
		s.logger.Warn().
			Int("attempts", s.attempts).
			Msg("Reconnection budget exhausted.")
		return false
	}

	s.attempts++
	s.logger.Info().
		Int("attempt", s.attempts).
		Int("budget", s.cfg.ReconnectAttempts).
		Dur("delay", s.cfg.ReconnectDelay).
		Msg("Scheduling reconnection attempt.")
	return true
}

// ResetAttempts clears the reconnection counter. Invoked on identity-driven
// connects so a fresh observation always gets the full budget.
func (s *Supervisor) ResetAttempts() {
	s.attempts = 0
}

// Attempts returns the consumed reconnection attempts, for observability.
func (s *Supervisor) Attempts() int {
	return s.attempts
}

// RetryDelay returns the fixed inter-attempt delay.
func (s *Supervisor) RetryDelay() time.Duration {
	return s.cfg.ReconnectDelay
}

// readPump delivers inbound messages for one connection into the client loop
// until the connection errors, then reports the loss. Sends unblock when the
// loop is gone.
func (s *Supervisor) readPump(gen uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case s.losses <- connLoss{gen: gen, err: err}:
			case <-s.done:
			}
			return
		}

		select {
		case s.frames <- inboundFrame{gen: gen, data: data}:
		case <-s.done:
			return
		}
	}
}
