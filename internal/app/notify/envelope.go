/*
Package notify contains the realtime notification client for the seat-booking dashboard.

This file defines the wire-level vocabulary: the inbound event envelope, the
payload shape each recognized event type carries, and the outbound channel
control frames (join-room / leave-room).
*/
package notify

import "encoding/json"

// EventType identifies an inbound event envelope.
type EventType string

const (
	// EventBookingCreated announces a new booking request.
	EventBookingCreated EventType = "booking-created"

	// EventBookingStatusChanged announces a booking moving between statuses.
	EventBookingStatusChanged EventType = "booking-status-changed"

	// EventPaymentProcessed announces the outcome of a booking payment.
	EventPaymentProcessed EventType = "payment-processed"
)

// Channel control frame types exchanged with the event stream.
const (
	FrameJoinRoom  = "join-room"
	FrameLeaveRoom = "leave-room"
)

// Envelope is the typed unit of inbound event data. Immutable and transient:
// it exists only for the duration of dispatch.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ControlFrame is the outbound channel protocol message, carrying the single
// channel name computed from the current identity.
type ControlFrame struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// EventUser identifies the account an event pertains to. Depending on the
// event type, either the id or the display name is populated.
type EventUser struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name,omitempty"`
}

// EventSeat identifies the seat an event pertains to.
type EventSeat struct {
	Number string `json:"number"`
}

// BookingCreatedPayload is the payload shape of booking-created envelopes.
type BookingCreatedPayload struct {
	ID   string    `json:"_id"`
	User EventUser `json:"user"`
	Seat EventSeat `json:"seat"`
}

// BookingStatusPayload is the payload shape of booking-status-changed envelopes.
type BookingStatusPayload struct {
	ID     string    `json:"_id"`
	User   EventUser `json:"user"`
	Status string    `json:"status"`
	Seat   EventSeat `json:"seat"`
}

// PaymentProcessedPayload is the payload shape of payment-processed envelopes.
type PaymentProcessedPayload struct {
	BookingID string    `json:"bookingId"`
	User      EventUser `json:"user"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
}
