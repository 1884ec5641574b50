/*
Package hub contains the development event hub.

This file defines the Client struct, representing an active WebSocket
connection to the hub. It manages the client's lifecycle, the read/write
message loops, and the join-room/leave-room channel protocol.
*/
package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"seatnotify/internal/app/notify"
	"seatnotify/internal/pkg/auth/jwt"
	"seatnotify/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the hub sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 4096
)

// Client represents an active WebSocket connection and its authenticated identity.
type Client struct {
	// ID is a hub-generated identifier used for logging and bookkeeping.
	ID string

	// the hub this client is attached to.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// identity holds the validated token claims of the connecting account.
	identity *jwt.Payload

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(id string, h *Hub, conn *websocket.Conn, identity *jwt.Payload) *Client {
	clientLogger := logx.Logger().With().
		Str("client_id", id).
		Str("account_id", identity.ID).
		Str("role", identity.Role).
		Logger()

	return &Client{
		ID:       id,
		hub:      h,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, 256),
		logger:   clientLogger,
	}
}

// ReadPump reads control frames from the connection, handles heartbeats, and
// performs cleanup when the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.RemoveClient(c)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error.")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processControlFrame(messageBytes)
	}
}

// processControlFrame handles one inbound join-room or leave-room frame.
func (c *Client) processControlFrame(messageBytes []byte) {
	var frame notify.ControlFrame
	if err := json.Unmarshal(messageBytes, &frame); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch frame.Type {
	case notify.FrameJoinRoom:
		if !c.mayJoin(frame.Payload) {
			c.logger.Warn().
				Str("channel", frame.Payload).
				Msg("Client requested a channel outside its identity scope.")
			return
		}
		c.hub.Join(c, frame.Payload)

	case notify.FrameLeaveRoom:
		c.hub.Leave(c, frame.Payload)

	default:
		c.logger.Warn().Str("frame_type", frame.Type).Msg("Client sent unsupported frame type")
	}
}

// mayJoin reports whether the requested channel matches the one derived from
// the client's identity claims.
func (c *Client) mayJoin(channel string) bool {
	derived, err := notify.ChannelFor(&notify.Identity{
		ID:        c.identity.ID,
		Role:      notify.Role(c.identity.Role),
		LibraryID: c.identity.LibraryID,
	})
	if err != nil {
		return false
	}

	return channel == derived
}

// WritePump writes queued messages to the connection and maintains the
// heartbeat. It exits when the send channel closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// CloseGracefully sends a close frame with the given reason and closes the connection.
func (c *Client) CloseGracefully(reason string) {
	closeMessage := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close message.")
	}

	c.conn.Close()
}
