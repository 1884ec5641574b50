/*
Package notify contains the realtime notification client for the seat-booking dashboard.

This file defines channel membership: deriving the single channel name for an
identity and keeping the joined channel synchronized with the connection.
*/
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"seatnotify/internal/pkg/errs"
	"seatnotify/internal/pkg/logx"
)

// ChannelFor derives the channel name for an identity:
// admin accounts listen on "admin-{id}", librarians on "library-{libraryId}",
// users on "user-{id}". An unrecognized role or a missing required id yields
// ErrInvalidIdentity.
func ChannelFor(identity *Identity) (string, *errs.CustomError) {
	if identity == nil || identity.ID == "" {
		return "", errs.NewError(errs.ErrInvalidIdentity)
	}

	switch identity.Role {
	case RoleAdmin:
		return fmt.Sprintf("admin-%s", identity.ID), nil

	case RoleLibrarian:
		if identity.LibraryID == "" {
			return "", errs.NewError(errs.ErrInvalidIdentity)
		}
		return fmt.Sprintf("library-%s", identity.LibraryID), nil

	case RoleUser:
		return fmt.Sprintf("user-%s", identity.ID), nil

	default:
		return "", errs.NewError(errs.ErrInvalidIdentity)
	}
}

// Membership tracks the channel currently joined on the live connection.
// Invariant: at most one channel is joined at a time; the previous channel is
// left before a new one is joined. All methods are called from the client loop.
type Membership struct {
	// joined is the name of the currently joined channel, empty if none.
	joined string

	logger zerolog.Logger
}

// NewMembership constructs a Membership with no joined channel.
func NewMembership() *Membership {
	return &Membership{
		logger: logx.Logger().With().Str("component", "Membership").Logger(),
	}
}

// Joined returns the currently joined channel, or the empty string.
func (m *Membership) Joined() string {
	return m.joined
}

// Join issues a join-room frame for the channel on the given connection.
// A nil connection (not connected) is a silent no-op: the join is re-attempted
// on the next successful connection for the then-current identity.
func (m *Membership) Join(conn Conn, channel string) {
	if conn == nil {
		m.logger.Debug().Str("channel", channel).Msg("Join skipped, not connected.")
		return
	}

	if m.joined == channel {
		return
	}

	// leave-before-join ordering when switching channels on a live connection
	if m.joined != "" {
		m.Leave(conn)
	}

	if err := writeControlFrame(conn, FrameJoinRoom, channel); err != nil {
		// The connection is broken; the read pump reports the loss and the
		// join runs again after reconnection.
		m.logger.Warn().Err(err).
			Int("code", errs.ErrChannelJoinFailed).
			Str("channel", channel).
			Msg("Failed to send join-room frame.")
		return
	}

	m.joined = channel
	m.logger.Info().Str("channel", channel).Msg("Joined channel.")
}

// Leave issues a leave-room frame for the joined channel, if any.
// Safe to call while disconnected; the joined marker is cleared either way.
func (m *Membership) Leave(conn Conn) {
	if m.joined == "" {
		return
	}

	channel := m.joined
	m.joined = ""

	if conn == nil {
		return
	}

	if err := writeControlFrame(conn, FrameLeaveRoom, channel); err != nil {
		m.logger.Warn().Err(err).Str("channel", channel).Msg("Failed to send leave-room frame.")
		return
	}

	m.logger.Info().Str("channel", channel).Msg("Left channel.")
}

// Reset clears the joined marker without emitting a frame. Used when the
// connection is already gone.
func (m *Membership) Reset() {
	m.joined = ""
}

func writeControlFrame(conn Conn, frameType, channel string) error {
	data, err := json.Marshal(ControlFrame{Type: frameType, Payload: channel})
	if err != nil {
		return err
	}

	return conn.WriteMessage(websocket.TextMessage, data)
}
