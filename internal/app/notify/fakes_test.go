package notify

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"seatnotify/internal/pkg/errs"
)

const testWait = 2 * time.Second

// fakeConn is a scripted transport connection. Outbound writes are recorded,
// inbound frames are delivered through a channel, and Close unblocks both.
type fakeConn struct {
	writes  chan []byte
	inbound chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		writes:  make(chan []byte, 16),
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.inbound:
		return websocket.TextMessage, data, nil
	case <-c.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("use of closed connection")
	default:
	}

	c.writes <- data
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return nil
}

// deliver queues one inbound frame as if the transport received it.
func (c *fakeConn) deliver(t *testing.T, data []byte) {
	t.Helper()

	select {
	case c.inbound <- data:
	case <-time.After(testWait):
		t.Fatalf("timed out delivering inbound frame")
	}
}

// nextWrite returns the next recorded outbound frame.
func (c *fakeConn) nextWrite(t *testing.T) []byte {
	t.Helper()

	select {
	case data := <-c.writes:
		return data
	case <-time.After(testWait):
		t.Fatalf("timed out waiting for an outbound frame")
		return nil
	}
}

// expectNoWrite asserts that no outbound frame arrives within a short window.
func (c *fakeConn) expectNoWrite(t *testing.T) {
	t.Helper()

	select {
	case data := <-c.writes:
		t.Fatalf("unexpected outbound frame: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

// waitClosed asserts the connection gets closed.
func (c *fakeConn) waitClosed(t *testing.T) {
	t.Helper()

	select {
	case <-c.closed:
	case <-time.After(testWait):
		t.Fatalf("timed out waiting for the connection to close")
	}
}

// fakeDialer hands out fakeConns, optionally failing the first failures dials
// (or every dial when failures is negative).
type fakeDialer struct {
	mu       sync.Mutex
	failures int
	dials    int
	headers  []http.Header

	conns chan *fakeConn
}

func newFakeDialer(failures int) *fakeDialer {
	return &fakeDialer{
		failures: failures,
		conns:    make(chan *fakeConn, 16),
	}
}

func (d *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	d.mu.Lock()
	d.dials++
	n := d.dials
	d.headers = append(d.headers, header)
	fail := d.failures < 0 || n <= d.failures
	d.mu.Unlock()

	if fail {
		return nil, errors.New("dial refused")
	}

	conn := newFakeConn()
	d.conns <- conn
	return conn, nil
}

// header returns the request header recorded for the i-th dial.
func (d *fakeDialer) header(i int) http.Header {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.headers[i]
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// nextConn returns the next successfully dialed connection.
func (d *fakeDialer) nextConn(t *testing.T) *fakeConn {
	t.Helper()

	select {
	case conn := <-d.conns:
		return conn
	case <-time.After(testWait):
		t.Fatalf("timed out waiting for a dial")
		return nil
	}
}

// recordingSink collects produced notifications.
type recordingSink struct {
	notifications chan Notification
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notifications: make(chan Notification, 16)}
}

func (s *recordingSink) Publish(n Notification) {
	s.notifications <- n
}

func (s *recordingSink) next(t *testing.T) Notification {
	t.Helper()

	select {
	case n := <-s.notifications:
		return n
	case <-time.After(testWait):
		t.Fatalf("timed out waiting for a notification")
		return Notification{}
	}
}

func (s *recordingSink) expectNone(t *testing.T) {
	t.Helper()

	select {
	case n := <-s.notifications:
		t.Fatalf("unexpected notification: %+v", n)
	case <-time.After(100 * time.Millisecond):
	}
}

// statusEvent is one recorded connection status signal.
type statusEvent struct {
	state ConnState
	code  int
}

// statusRecorder collects connection status signals.
type statusRecorder struct {
	events chan statusEvent
}

func newStatusRecorder() *statusRecorder {
	return &statusRecorder{events: make(chan statusEvent, 32)}
}

func (r *statusRecorder) listener() StatusListener {
	return func(state ConnState, cause *errs.CustomError) {
		event := statusEvent{state: state}
		if cause != nil {
			event.code = cause.Code
		}
		r.events <- event
	}
}

// waitFor returns the first recorded event matching the wanted state.
func (r *statusRecorder) waitFor(t *testing.T, want ConnState) statusEvent {
	t.Helper()

	deadline := time.After(testWait)
	for {
		select {
		case event := <-r.events:
			if event.state == want {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
			return statusEvent{}
		}
	}
}

// waitState polls the client until it reports the wanted connection state.
func waitState(t *testing.T, c *Client, want ConnState) {
	t.Helper()

	deadline := time.Now().Add(testWait)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected state %s, got %s", want, c.State())
}
