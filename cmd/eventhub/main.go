/*
Package main is the entry point for the SeatNotify development event hub.

It is responsible for loading configuration, initializing the global logging
system, setting up the HTTP server with the WebSocket endpoint, and gracefully
handling operating system interrupt signals (SIGINT, SIGTERM).
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seatnotify/internal/app/hub"
	"seatnotify/internal/configs"
	"seatnotify/internal/handler"
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
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Hub.Port).
		Strs("allowed_origins", cfg.Hub.AllowedOrigins).
		Msg("Configuration loaded successfully")

	eventHub := hub.NewHub()

	router := handler.Router(&handler.AppDeps{
		Hub:    eventHub,
		Config: cfg,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Hub.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Event hub starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	eventHub.Shutdown()

	logx.Info("Event hub gracefully stopped.")
}
