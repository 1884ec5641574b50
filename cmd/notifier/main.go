/*
Package main is the entry point for the SeatNotify notifier.

It derives the local identity from the configured bearer token, runs the
realtime notification client against the event stream, writes produced
notifications to the structured log, and tears down cleanly on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"seatnotify/internal/app/notify"
	"seatnotify/internal/configs"
	"seatnotify/internal/pkg/auth/jwt"
	"seatnotify/internal/pkg/errs"
	"seatnotify/internal/pkg/logx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := configs.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())

	if cfg.Client.AuthToken == "" {
		logx.Fatal(nil, "AUTH_TOKEN is required; obtain one from the event hub (POST /api/tokens)")
	}

	claims, err := jwt.DecodeUnverified(cfg.Client.AuthToken)
	if err != nil {
		logx.Fatal(err, "AUTH_TOKEN is not a decodable identity token")
	}

	identity := &notify.Identity{
		ID:        claims.ID,
		Role:      notify.Role(claims.Role),
		LibraryID: claims.LibraryID,
		AuthToken: cfg.Client.AuthToken,
	}

	logx.Logger().Info().
		Str("stream_url", cfg.Client.StreamURL).
		Str("identity_id", identity.ID).
		Str("role", string(identity.Role)).
		Msg("Configuration loaded successfully")

	client := notify.NewClient(notify.Options{
		Config: cfg.Client,
		Sink:   notify.LogSink{},
		Status: func(state notify.ConnState, cause *errs.CustomError) {
			event := logx.Logger().Info()
			if cause != nil {
				event = logx.Logger().Warn().Str("reason", cause.Message)
			}
			event.Str("state", state.String()).Msg("Connection status")
		},
	})

	client.Start()
	client.Observe(identity)

	<-ctx.Done()
	logx.Info("Received shutdown signal. Tearing down.")

	client.Observe(nil)
	client.Stop()

	logx.Info("Notifier stopped.")
}
