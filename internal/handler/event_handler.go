/*
Package handler provides the HTTP handlers and routing setup for the event hub.

This file contains the event injection and token issuing handlers used to
drive the notification client during development and integration testing.
*/
package handler

import (
	"encoding/json"
	"net/http"

	"seatnotify/internal/app/notify"
	"seatnotify/internal/pkg/auth/jwt"
	"seatnotify/internal/pkg/errs"
	"seatnotify/internal/pkg/req"
	"seatnotify/internal/pkg/resp"
)

// InjectEventRequest is the body of POST /api/events.
type InjectEventRequest struct {
	// Channel names the broadcast group receiving the envelope.
	Channel string `json:"channel"`

	// Type is the event type of the envelope. The hub forwards any type;
	// clients drop the ones they do not recognize.
	Type string `json:"type"`

	// Payload is the envelope payload, forwarded verbatim.
	Payload json.RawMessage `json:"payload"`
}

// HandleInjectEvent broadcasts an event envelope to a channel.
func HandleInjectEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body InjectEventRequest
		if bindErr := req.BindJSON(r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		if body.Channel == "" || body.Type == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		env := notify.Envelope{
			Type:    notify.EventType(body.Type),
			Payload: body.Payload,
		}

		delivered := deps.Hub.Broadcast(body.Channel, env)
		if delivered == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrChannelNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"delivered": delivered,
		})
	}
}

// IssueTokenRequest is the body of POST /api/tokens.
type IssueTokenRequest struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	LibraryID string `json:"libraryId,omitempty"`
}

// HandleIssueToken signs a development identity token for the given claims.
// Only available in the development environment.
func HandleIssueToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Config.IsDevelopment() {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var body IssueTokenRequest
		if bindErr := req.BindJSON(r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		if body.ID == "" || body.Role == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		payload := &jwt.Payload{
			ID:        body.ID,
			Role:      body.Role,
			LibraryID: body.LibraryID,
		}

		token, err := jwt.GenerateToken(payload, deps.Config.Hub.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"token": token,
		})
	}
}
