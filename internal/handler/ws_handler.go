/*
Package handler provides the HTTP handlers and routing setup for the event hub.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, authenticating the bearer token, upgrading the HTTP connection to
WebSocket, and initiating the client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"seatnotify/internal/app/hub"
	"seatnotify/internal/pkg/auth/jwt"
	"seatnotify/internal/pkg/errs"
	"seatnotify/internal/pkg/limiter"
	"seatnotify/internal/pkg/logx"
	"seatnotify/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// A connection without a valid bearer token is rejected before the upgrade.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		if jwt.BearerFromHeader(r) == "" {
			logx.Warn("WebSocket connection rejected: Missing bearer token.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		identity := jwt.Authenticate(r, deps.Config.Hub.JWTSecret)
		if identity == nil {
			logx.Warn("WebSocket connection rejected: Invalid bearer token.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrAuthTokenInvalid))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := hub.NewClient(uuid.NewString(), deps.Hub, conn, identity)
		deps.Hub.AddClient(client)

		go client.WritePump()

		logx.Info("WebSocket connection established",
			"client_id", client.ID,
			"account_id", identity.ID,
			"role", identity.Role,
		)

		client.ReadPump()
	}
}
