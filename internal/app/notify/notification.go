/*
Package notify contains the realtime notification client for the seat-booking dashboard.

This file defines the Notification produced by the event router, the sink it is
delivered to, and the listener for user-visible connection status signals.
*/
package notify

import (
	"seatnotify/internal/pkg/errs"
	"seatnotify/internal/pkg/logx"
)

// Severity classifies a notification for rendering.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Action is an actionable reference attached to a notification, typically a
// deep link into the dashboard.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Notification is the derived output of the event router. It is handed to the
// sink once and never persisted or retried.
type Notification struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      *Action  `json:"action,omitempty"`
}

// Sink consumes notifications. The sink owns rendering and dismissal; a failed
// render is never retried by the client.
type Sink interface {
	Publish(n Notification)
}

// StatusListener receives user-visible connection lifecycle signals. The cause
// is nil for clean transitions (e.g. entering Connected).
type StatusListener func(state ConnState, cause *errs.CustomError)

// LogSink writes notifications to the structured log. It is the default sink
// of the notifier CLI.
type LogSink struct{}

// Publish implements Sink.
func (LogSink) Publish(n Notification) {
	event := logx.Logger().Info().
		Str("component", "sink").
		Str("severity", string(n.Severity)).
		Str("title", n.Title).
		Str("description", n.Description)

	if n.Action != nil {
		event = event.Str("action_url", n.Action.URL)
	}

	event.Msg("Notification")
}
