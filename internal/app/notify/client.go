/*
Package notify contains the realtime notification client for the seat-booking dashboard.

This file defines the Client: the identity watcher and single event loop that
owns the supervisor, channel membership, and router. Every state transition
runs on this one goroutine, so teardown/connect sequences for successive
identities can never interleave.
*/
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"seatnotify/internal/configs"
	"seatnotify/internal/pkg/errs"
	"seatnotify/internal/pkg/logx"
)

const (
	frameChannelBuffer = 64
	lossChannelBuffer  = 4
)

// Options configures a Client. Config is required; the remaining fields have
// working defaults.
type Options struct {
	Config configs.ClientConfig

	// Dialer overrides the transport dialer. Defaults to a WebsocketDialer.
	Dialer Dialer

	// Sink receives produced notifications. Defaults to LogSink.
	Sink Sink

	// Status receives user-visible connection lifecycle signals. Optional.
	Status StatusListener
}

// Client keeps a persistent connection to the backend event stream alive
// across identity changes, keeps channel membership synchronized with the
// current identity, and routes inbound envelopes into notifications.
//
// The connection is never established on construction: Start launches the
// loop, and only an observed identity triggers a connect.
type Client struct {
	sup    *Supervisor
	member *Membership
	router *Router
	status StatusListener

	// identity is the currently observed identity; nil means logged out.
	// Owned by the run loop.
	identity *Identity

	updates chan *Identity
	frames  chan inboundFrame
	losses  chan connLoss

	// retryTimer and retryC carry the pending reconnection attempt; retryGen
	// guards against a stale timer firing after a teardown superseded it.
	retryTimer *time.Timer
	retryC     <-chan time.Time
	retryGen   uint64

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	logger zerolog.Logger
}

// NewClient constructs a Client. No connection is attempted until Start has
// run and an identity is observed.
func NewClient(opts Options) *Client {
	if opts.Dialer == nil {
		opts.Dialer = &WebsocketDialer{HandshakeTimeout: opts.Config.HandshakeTimeout}
	}
	if opts.Sink == nil {
		opts.Sink = LogSink{}
	}

	c := &Client{
		member:  NewMembership(),
		router:  NewRouter(opts.Sink),
		status:  opts.Status,
		updates: make(chan *Identity),
		frames:  make(chan inboundFrame, frameChannelBuffer),
		losses:  make(chan connLoss, lossChannelBuffer),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		logger:  logx.Logger().With().Str("component", "Client").Logger(),
	}

	c.sup = NewSupervisor(opts.Config, opts.Dialer, c.frames, c.losses, c.done)

	return c
}

// Start launches the event loop.
func (c *Client) Start() {
	go c.run()
}

// Stop tears down the connection and terminates the loop. Idempotent.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}

// Observe delivers the next identity value to the loop. nil means logged out.
// It blocks until the loop has accepted the update, so a caller observing a
// sequence of identities gets strictly ordered transitions.
func (c *Client) Observe(identity *Identity) {
	select {
	case c.updates <- identity:
	case <-c.done:
	}
}

// State reports the current connection state.
func (c *Client) State() ConnState {
	return c.sup.State()
}

// run is the single event loop owning all client state.
func (c *Client) run() {
	defer close(c.done)

	for {
		select {
		case identity := <-c.updates:
			c.handleIdentity(identity)

		case frame := <-c.frames:
			c.handleFrame(frame)

		case loss := <-c.losses:
			c.handleLoss(loss)

		case <-c.retryC:
			c.handleRetry()

		case <-c.stop:
			c.teardown()
			return
		}
	}
}

// handleIdentity reacts to an identity appearing, changing, or disappearing.
// A changed identity is fully torn down before the new connect sequence
// begins; identity loss tears down without reconnecting.
func (c *Client) handleIdentity(next *Identity) {
	if next.Equal(c.identity) && c.sup.State() == StateConnected {
		return
	}

	if c.identity != nil {
		c.teardown()
	}

	c.identity = next
	if next == nil {
		c.logger.Info().Msg("Identity cleared; staying disconnected.")
		return
	}

	c.logger.Info().
		Str("identity_id", next.ID).
		Str("role", string(next.Role)).
		Msg("Identity observed; connecting.")

	// An explicit identity-driven connect always gets the full budget.
	c.sup.ResetAttempts()
	c.connect()
}

// connect performs one connect attempt and, on success, runs the
// join-then-register sequence for the current identity.
func (c *Client) connect() {
	if err := c.sup.Connect(context.Background(), c.identity); err != nil {
		switch err.Code {
		case errs.ErrAuthTokenMissing:
			// Fatal for this identity; recovery requires a new observation.
			c.signal(StateFailed, err)
		default:
			c.signal(StateReconnecting, err)
			c.scheduleRetry()
		}
		return
	}

	channel, cerr := ChannelFor(c.identity)
	if cerr != nil {
		c.logger.Error().Err(cerr).Msg("No channel derivable for identity; tearing down.")
		c.sup.Disconnect()
		c.signal(StateFailed, cerr)
		return
	}

	c.member.Join(c.sup.Conn(), channel)
	c.router.Bind(c.sup.Generation())
	c.signal(StateConnected, nil)
}

// handleFrame routes one inbound message, dropping anything from a
// superseded connection.
func (c *Client) handleFrame(frame inboundFrame) {
	if frame.gen != c.sup.Generation() {
		return
	}

	c.router.Dispatch(frame.gen, c.identity, frame.data)
}

// handleLoss reacts to an unexpected connection drop: handlers are detached,
// the membership marker cleared, and a bounded reconnect cycle started.
func (c *Client) handleLoss(loss connLoss) {
	if loss.gen != c.sup.Generation() {
		return
	}

	c.logger.Warn().Err(loss.err).Msg("Connection lost unexpectedly.")

	c.router.Unbind()
	c.member.Reset()
	c.sup.MarkLost()

	c.signal(StateReconnecting, errs.NewError(errs.ErrTransportClosed))
	c.scheduleRetry()
}

// scheduleRetry arms the fixed-delay reconnection timer, or surfaces the
// exhausted budget as a persistent warning.
func (c *Client) scheduleRetry() {
	if !c.sup.ConsumeAttempt() {
		c.signal(StateFailed, errs.NewError(errs.ErrRetriesExhausted))
		return
	}

	c.retryGen = c.sup.Generation()
	c.retryTimer = time.NewTimer(c.sup.RetryDelay())
	c.retryC = c.retryTimer.C
}

// handleRetry runs one reconnection attempt when the timer fires. A timer
// belonging to a superseded connection is a no-op.
func (c *Client) handleRetry() {
	c.retryTimer = nil
	c.retryC = nil

	if c.sup.State() != StateReconnecting || c.retryGen != c.sup.Generation() {
		return
	}

	c.connect()
}

// cancelRetry stops and clears any pending reconnection timer.
func (c *Client) cancelRetry() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
		c.retryC = nil
	}
}

// teardown runs the reverse sequence: handlers deregistered, channel left,
// connection closed. The pending retry timer, if any, is cancelled first so
// it cannot fire into the next identity's lifetime.
func (c *Client) teardown() {
	c.cancelRetry()

	c.router.Unbind()

	if c.sup.State() == StateConnected {
		c.member.Leave(c.sup.Conn())
	} else {
		c.member.Reset()
	}

	c.sup.Disconnect()
}

// signal forwards a user-visible connection status change.
func (c *Client) signal(state ConnState, cause *errs.CustomError) {
	if c.status == nil {
		return
	}

	c.status(state, cause)
}
