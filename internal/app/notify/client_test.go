package notify

import (
	"fmt"
	"testing"
	"time"

	"seatnotify/internal/configs"
	"seatnotify/internal/pkg/errs"
)

func newTestClient(t *testing.T, failures, attempts int) (*Client, *fakeDialer, *recordingSink, *statusRecorder) {
	t.Helper()

	dialer := newFakeDialer(failures)
	sink := newRecordingSink()
	status := newStatusRecorder()

	c := NewClient(Options{
		Config: configs.ClientConfig{
			StreamURL:         "ws://stream.test/ws",
			ReconnectAttempts: attempts,
			ReconnectDelay:    20 * time.Millisecond,
			HandshakeTimeout:  time.Second,
		},
		Dialer: dialer,
		Sink:   sink,
		Status: status.listener(),
	})

	c.Start()
	t.Cleanup(c.Stop)

	return c, dialer, sink, status
}

func userIdentity(id string) *Identity {
	return &Identity{ID: id, Role: RoleUser, AuthToken: "tok-" + id}
}

func statusEnvelope(bookingUser, status string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"booking-status-changed","payload":{"_id":"B1","user":{"_id":%q},"status":%q,"seat":{"number":"A12"}}}`,
		bookingUser, status,
	))
}

func paymentEnvelope(paymentUser string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"payment-processed","payload":{"bookingId":"B9","user":{"_id":%q},"status":"completed","amount":42}}`,
		paymentUser,
	))
}

func TestClientLoginConnectsJoinsAndRoutes(t *testing.T) {
	c, dialer, sink, status := newTestClient(t, 0, 3)

	c.Observe(userIdentity("U1"))

	conn := dialer.nextConn(t)

	frame := decodeFrame(t, conn.nextWrite(t))
	if frame.Type != FrameJoinRoom || frame.Payload != "user-U1" {
		t.Fatalf("expected join-room for user-U1, got %+v", frame)
	}

	status.waitFor(t, StateConnected)

	if got := dialer.header(0).Get("Authorization"); got != "Bearer tok-U1" {
		t.Errorf("expected bearer token on the handshake, got %q", got)
	}
	if dialer.dialCount() != 1 {
		t.Errorf("expected exactly one connect, got %d", dialer.dialCount())
	}

	// A routed envelope flows end to end into the sink.
	conn.deliver(t, statusEnvelope("U1", "cancelled"))

	n := sink.next(t)
	if n.Severity != SeverityError || n.Title != "Booking cancelled" {
		t.Errorf("unexpected notification: %+v", n)
	}
	if n.Action != nil {
		t.Errorf("end users must not get an action, got %+v", n.Action)
	}
}

func TestClientLogoutTearsDownWithoutReconnect(t *testing.T) {
	c, dialer, sink, status := newTestClient(t, 0, 3)

	c.Observe(userIdentity("U1"))
	conn := dialer.nextConn(t)
	conn.nextWrite(t) // join-room
	status.waitFor(t, StateConnected)

	c.Observe(nil)

	frame := decodeFrame(t, conn.nextWrite(t))
	if frame.Type != FrameLeaveRoom || frame.Payload != "user-U1" {
		t.Fatalf("expected leave-room for user-U1 before close, got %+v", frame)
	}

	conn.waitClosed(t)
	waitState(t, c, StateDisconnected)

	time.Sleep(150 * time.Millisecond)
	if dialer.dialCount() != 1 {
		t.Errorf("expected no reconnection after logout, got %d dials", dialer.dialCount())
	}
	sink.expectNone(t)
}

func TestClientFiltersForeignPayment(t *testing.T) {
	c, dialer, sink, status := newTestClient(t, 0, 3)

	c.Observe(userIdentity("U1"))
	conn := dialer.nextConn(t)
	conn.nextWrite(t) // join-room
	status.waitFor(t, StateConnected)

	conn.deliver(t, paymentEnvelope("U2"))
	sink.expectNone(t)

	conn.deliver(t, paymentEnvelope("U1"))
	n := sink.next(t)
	if n.Title != "Payment completed" {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestClientRepeatedEnvelopesAreNotDeduplicated(t *testing.T) {
	c, dialer, sink, status := newTestClient(t, 0, 3)

	c.Observe(userIdentity("U1"))
	conn := dialer.nextConn(t)
	conn.nextWrite(t) // join-room
	status.waitFor(t, StateConnected)

	conn.deliver(t, statusEnvelope("U1", "confirmed"))
	conn.deliver(t, statusEnvelope("U1", "confirmed"))

	sink.next(t)
	sink.next(t)
}

func TestClientIdentityChangeLeavesBeforeJoining(t *testing.T) {
	c, dialer, _, status := newTestClient(t, 0, 3)

	c.Observe(userIdentity("U1"))
	oldConn := dialer.nextConn(t)
	oldConn.nextWrite(t) // join-room user-U1
	status.waitFor(t, StateConnected)

	c.Observe(&Identity{ID: "A1", Role: RoleAdmin, AuthToken: "tok-A1"})

	frame := decodeFrame(t, oldConn.nextWrite(t))
	if frame.Type != FrameLeaveRoom || frame.Payload != "user-U1" {
		t.Fatalf("expected leave-room for the previous channel, got %+v", frame)
	}
	oldConn.waitClosed(t)

	newConn := dialer.nextConn(t)
	frame = decodeFrame(t, newConn.nextWrite(t))
	if frame.Type != FrameJoinRoom || frame.Payload != "admin-A1" {
		t.Fatalf("expected join-room for admin-A1 on the new connection, got %+v", frame)
	}

	if dialer.dialCount() != 2 {
		t.Errorf("expected exactly two connects across the identity change, got %d", dialer.dialCount())
	}
}

func TestClientUnexpectedDropReconnectsAndRejoins(t *testing.T) {
	c, dialer, sink, status := newTestClient(t, 0, 3)

	c.Observe(userIdentity("U1"))
	conn := dialer.nextConn(t)
	conn.nextWrite(t) // join-room
	status.waitFor(t, StateConnected)

	// Simulated transport drop.
	conn.Close()

	event := status.waitFor(t, StateReconnecting)
	if event.code != errs.ErrTransportClosed {
		t.Errorf("expected a transport-closed signal, got code %d", event.code)
	}

	newConn := dialer.nextConn(t)
	frame := decodeFrame(t, newConn.nextWrite(t))
	if frame.Type != FrameJoinRoom || frame.Payload != "user-U1" {
		t.Fatalf("expected rejoin of user-U1 after reconnection, got %+v", frame)
	}
	status.waitFor(t, StateConnected)

	// Routing still works on the replacement connection.
	newConn.deliver(t, statusEnvelope("U1", "confirmed"))
	sink.next(t)
}

func TestClientRetriesExhaustedThenIdentityRecovery(t *testing.T) {
	// Initial dial plus all three retries fail; the fifth dial succeeds.
	c, dialer, _, status := newTestClient(t, 4, 3)

	c.Observe(userIdentity("U1"))

	event := status.waitFor(t, StateFailed)
	if event.code != errs.ErrRetriesExhausted {
		t.Errorf("expected a retries-exhausted signal, got code %d", event.code)
	}
	if dialer.dialCount() != 4 {
		t.Errorf("expected 1 initial dial + 3 retries, got %d", dialer.dialCount())
	}

	// No further automatic attempts out of Failed.
	time.Sleep(150 * time.Millisecond)
	if dialer.dialCount() != 4 {
		t.Errorf("expected no automatic attempts after Failed, got %d dials", dialer.dialCount())
	}

	// A fresh identity observation gets exactly one new connect with a reset budget.
	c.Observe(userIdentity("U1"))

	conn := dialer.nextConn(t)
	frame := decodeFrame(t, conn.nextWrite(t))
	if frame.Type != FrameJoinRoom || frame.Payload != "user-U1" {
		t.Fatalf("expected join-room after recovery, got %+v", frame)
	}
	status.waitFor(t, StateConnected)

	if dialer.dialCount() != 5 {
		t.Errorf("expected exactly one connect on re-observation, got %d total dials", dialer.dialCount())
	}
}

func TestClientLogoutDuringReconnectCancelsRetry(t *testing.T) {
	c, dialer, _, status := newTestClient(t, -1, 5)

	c.Observe(userIdentity("U1"))
	status.waitFor(t, StateReconnecting)

	c.Observe(nil)
	waitState(t, c, StateDisconnected)

	// A stale retry timer firing after teardown must be a no-op.
	settled := dialer.dialCount()
	time.Sleep(200 * time.Millisecond)
	if got := dialer.dialCount(); got != settled {
		t.Errorf("retry kept running after logout: %d dials after %d at teardown", got, settled)
	}
	if c.State() != StateDisconnected {
		t.Errorf("expected state disconnected, got %s", c.State())
	}
}

func TestClientEmptyTokenFailsWithoutDialing(t *testing.T) {
	c, dialer, _, status := newTestClient(t, 0, 3)

	c.Observe(&Identity{ID: "U1", Role: RoleUser})

	event := status.waitFor(t, StateFailed)
	if event.code != errs.ErrAuthTokenMissing {
		t.Errorf("expected an auth-failure signal, got code %d", event.code)
	}

	time.Sleep(100 * time.Millisecond)
	if dialer.dialCount() != 0 {
		t.Errorf("expected no dial without a token, got %d", dialer.dialCount())
	}
	if c.State() != StateFailed {
		t.Errorf("expected state failed, got %s", c.State())
	}
}
