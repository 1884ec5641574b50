/*
Package hub contains the development event hub: a WebSocket endpoint that
accepts bearer-authenticated clients, honors the join-room/leave-room channel
protocol, and broadcasts injected event envelopes to channel members.

This file defines the Hub struct, which tracks channel membership for all
connected clients. It makes no durability or delivery guarantees; it exists to
run and integration-test the notification client against a real endpoint.
*/
package hub

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"seatnotify/internal/app/notify"
	"seatnotify/internal/pkg/logx"
)

// Hub coordinates channel membership and broadcasting for all connected clients.
type Hub struct {
	// mu protects the channels and clients maps.
	mu sync.RWMutex

	// channels maps a channel name to its member set.
	channels map[string]map[*Client]struct{}

	// clients tracks every connected client for shutdown.
	clients map[*Client]struct{}

	// structured logger with hub context.
	logger zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*Client]struct{}),
		clients:  make(map[*Client]struct{}),
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// AddClient registers a connected client with no channel membership yet.
func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}

	h.logger.Info().
		Str("client_id", c.ID).
		Int("total_clients", len(h.clients)).
		Msg("Client connected.")
}

// RemoveClient drops a client from every channel and from the hub. Called
// from the client's read pump on disconnect.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	for channel, members := range h.channels {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.channels, channel)
			}
		}
	}

	// The clients map guard above makes this the only close.
	close(c.send)

	h.logger.Info().
		Str("client_id", c.ID).
		Int("total_clients", len(h.clients)).
		Msg("Client disconnected.")
}

// Join adds the client to the named channel.
func (h *Hub) Join(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.channels[channel]
	if !ok {
		members = make(map[*Client]struct{})
		h.channels[channel] = members
	}
	members[c] = struct{}{}

	h.logger.Info().
		Str("client_id", c.ID).
		Str("channel", channel).
		Int("members", len(members)).
		Msg("Client joined channel.")
}

// Leave removes the client from the named channel.
func (h *Hub) Leave(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.channels[channel]
	if !ok {
		return
	}

	delete(members, c)
	if len(members) == 0 {
		delete(h.channels, channel)
	}

	h.logger.Info().
		Str("client_id", c.ID).
		Str("channel", channel).
		Msg("Client left channel.")
}

// Members returns the current member count of a channel.
func (h *Hub) Members(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Broadcast marshals the envelope once and queues it to every member of the
// channel. It returns the number of clients the envelope was queued for.
// Clients with a full send queue are skipped, not disconnected.
func (h *Hub) Broadcast(channel string, env notify.Envelope) int {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Str("channel", channel).Msg("Error marshaling envelope for broadcast.")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.channels[channel] {
		select {
		case c.send <- data:
			delivered++
		default:
			h.logger.Warn().
				Str("client_id", c.ID).
				Str("channel", channel).
				Msg("Client send channel full, dropping envelope.")
		}
	}

	return delivered
}

// Shutdown closes every client connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.CloseGracefully("Hub shutting down.")
	}

	h.logger.Info().Int("clients", len(clients)).Msg("Hub shutdown complete.")
}
