/*
Package notify contains the realtime notification client for the seat-booking dashboard.

This file defines the EventRouter: a declarative routing table keyed by event
type, with per-route role and ownership filters, that turns inbound envelopes
into notifications for the sink.
*/
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"seatnotify/internal/pkg/errs"
	"seatnotify/internal/pkg/logx"
)

// bookingStatusVerbs maps a booking status to the verb used in the
// notification title. Statuses outside the map read as "updated".
var bookingStatusVerbs = map[string]string{
	"confirmed": "confirmed",
	"cancelled": "cancelled",
}

// bookingStatusSeverities maps a booking status to the notification severity.
// Statuses outside the map render as info.
var bookingStatusSeverities = map[string]Severity{
	"confirmed": SeveritySuccess,
	"cancelled": SeverityError,
	"pending":   SeverityInfo,
}

// paymentSeverities maps a payment status to the notification severity.
var paymentSeverities = map[string]Severity{
	"completed": SeveritySuccess,
	"failed":    SeverityError,
}

// route describes how one event type is filtered and rendered.
type route struct {
	// roles restricts delivery to the listed roles. Empty means all roles.
	roles []Role

	// handle applies the ownership filter and builds the notification.
	// A nil notification with a nil error means the event was filtered out.
	handle func(identity *Identity, payload json.RawMessage) (*Notification, error)
}

// Router owns the subscription set of the live connection: exactly one handler
// per recognized event type, bound to one connection generation at a time.
// All methods are called from the client loop.
type Router struct {
	sink   Sink
	routes map[EventType]route

	// boundGen is the connection generation the subscription set is currently
	// bound to; zero means unbound.
	boundGen uint64

	// binds counts successful Bind transitions, for observability.
	binds int

	logger zerolog.Logger
}

// NewRouter constructs a Router delivering matched events to the given sink.
func NewRouter(sink Sink) *Router {
	r := &Router{
		sink:   sink,
		logger: logx.Logger().With().Str("component", "Router").Logger(),
	}

	r.routes = map[EventType]route{
		EventBookingCreated: {
			roles:  []Role{RoleAdmin, RoleLibrarian},
			handle: r.bookingCreated,
		},
		EventBookingStatusChanged: {
			handle: r.bookingStatusChanged,
		},
		EventPaymentProcessed: {
			handle: r.paymentProcessed,
		},
	}

	return r
}

// Bind attaches the subscription set to the given connection generation.
// Idempotent per connection: binding the generation it is already bound to is
// a no-op, so handlers are registered at most once per live connection.
func (r *Router) Bind(gen uint64) {
	if r.boundGen == gen {
		return
	}

	if r.boundGen != 0 {
		r.logger.Warn().
			Uint64("bound_generation", r.boundGen).
			Uint64("new_generation", gen).
			Msg("Rebinding without prior unbind; tearing down previous subscription set.")
	}

	r.boundGen = gen
	r.binds++
	r.logger.Debug().Uint64("generation", gen).Int("event_types", len(r.routes)).Msg("Subscription set bound.")
}

// Unbind detaches the subscription set. Idempotent; always invoked before the
// connection closes or Bind runs again.
func (r *Router) Unbind() {
	if r.boundGen == 0 {
		return
	}

	r.logger.Debug().Uint64("generation", r.boundGen).Msg("Subscription set unbound.")
	r.boundGen = 0
}

// Dispatch routes one inbound frame for the given identity. Frames from stale
// generations and envelopes that fail any filter are dropped; each surviving
// envelope yields exactly one notification.
func (r *Router) Dispatch(gen uint64, identity *Identity, data []byte) {
	if r.boundGen == 0 || gen != r.boundGen {
		r.logger.Debug().Uint64("frame_generation", gen).Msg("Dropping frame from stale or unbound connection.")
		return
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Debug().Err(err).Msg("Dropping malformed envelope.")
		return
	}

	rt, ok := r.routes[env.Type]
	if !ok {
		// The router recognizes a closed set of types.
		r.logger.Debug().
			Int("code", errs.ErrUnknownEventType).
			Str("event_type", string(env.Type)).
			Msg("Dropping envelope of unknown type.")
		return
	}

	if len(rt.roles) > 0 && !roleAllowed(rt.roles, identity.Role) {
		return
	}

	n, err := rt.handle(identity, env.Payload)
	if err != nil {
		r.logger.Debug().Err(err).
			Int("code", errs.ErrMalformedPayload).
			Str("event_type", string(env.Type)).
			Msg("Dropping envelope with malformed payload.")
		return
	}

	if n == nil {
		// Filtered by ownership.
		return
	}

	r.sink.Publish(*n)
}

func roleAllowed(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// bookingCreated handles booking-created envelopes for staff roles.
func (r *Router) bookingCreated(identity *Identity, payload json.RawMessage) (*Notification, error) {
	var p BookingCreatedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	return &Notification{
		Severity:    SeverityInfo,
		Title:       "New booking request",
		Description: fmt.Sprintf("%s requested seat %s", p.User.Name, p.Seat.Number),
		Action:      bookingAction(identity.Role, p.ID),
	}, nil
}

// bookingStatusChanged handles booking-status-changed envelopes for all roles.
// End users only receive changes to their own bookings.
func (r *Router) bookingStatusChanged(identity *Identity, payload json.RawMessage) (*Notification, error) {
	var p BookingStatusPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	if identity.Role == RoleUser && p.User.ID != identity.ID {
		return nil, nil
	}

	verb, ok := bookingStatusVerbs[p.Status]
	if !ok {
		verb = "updated"
	}

	severity, ok := bookingStatusSeverities[p.Status]
	if !ok {
		severity = SeverityInfo
	}

	return &Notification{
		Severity:    severity,
		Title:       fmt.Sprintf("Booking %s", verb),
		Description: fmt.Sprintf("Your booking for seat %s was %s", p.Seat.Number, verb),
		Action:      bookingAction(identity.Role, p.ID),
	}, nil
}

// paymentProcessed handles payment-processed envelopes. Delivery is always
// restricted to the account the payment belongs to.
func (r *Router) paymentProcessed(identity *Identity, payload json.RawMessage) (*Notification, error) {
	var p PaymentProcessedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	if p.User.ID != identity.ID {
		return nil, nil
	}

	severity, ok := paymentSeverities[p.Status]
	if !ok {
		severity = SeverityInfo
	}

	return &Notification{
		Severity:    severity,
		Title:       fmt.Sprintf("Payment %s", p.Status),
		Description: fmt.Sprintf("Payment of $%.2f for booking %s", p.Amount, p.BookingID),
		Action:      bookingAction(identity.Role, p.BookingID),
	}, nil
}

// bookingAction returns the deep link attached for staff roles. End users get
// no action.
func bookingAction(role Role, bookingID string) *Action {
	if role == RoleUser {
		return nil
	}

	return &Action{
		Label: "View booking",
		URL:   fmt.Sprintf("/bookings/%s", bookingID),
	}
}
