/*
Package handler provides the HTTP handlers and routing setup for the event hub.

This file defines the main Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers
(event injection and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"seatnotify/internal/pkg/limiter"
	"seatnotify/internal/pkg/logx"
	"seatnotify/internal/pkg/resp"
)

const (
	// InjectRate and InjectBurst bound event injection per client IP.
	InjectRate  = 5
	InjectBurst = 20

	// ConnectRate and ConnectBurst bound WebSocket connection attempts per client IP.
	ConnectRate  = 0.5
	ConnectBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the hub.
// It initializes IP-based rate limiters, configures credentialed CORS, and
// applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	injectLimiter := limiter.NewIPRateLimiter(rate.Limit(InjectRate), InjectBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.Hub.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			// Non-browser clients send no Origin header.
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.Hub.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.Hub.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "SeatNotify Event Hub",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		rateLimitedInject := injectLimiter.Middleware(HandleInjectEvent(deps))
		api.Post("/events", http.HandlerFunc(rateLimitedInject.ServeHTTP))
		api.Post("/tokens", HandleIssueToken(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
