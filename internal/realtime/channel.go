// Package realtime maintains the persistent event connection to the
// portal backend. The portal uses it to announce presence after
// sign-in; incoming events are dispatched to typed subscriptions and
// bridged onto the UI loop.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// Reconnection policy.
const (
	maxAttempts      = 5
	initialBackoff   = 1 * time.Second
	maxBackoff       = 5 * time.Second
	handshakeTimeout = 20 * time.Second
)

// EventUserConnected is the presence-announce event name.
const EventUserConnected = "user-connected"

// Event is a single message on the channel: an event name and its
// JSON payload.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// EventMsg delivers a received Event to the Bubble Tea loop.
type EventMsg struct {
	Event Event
}

// outbound is the wire shape for emitted events.
type outbound struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Channel is a reconnecting websocket client. All methods are safe
// for concurrent use; the read loop runs on its own goroutine.
type Channel struct {
	url    string
	dialer *websocket.Dialer

	mu        sync.Mutex
	wmu       sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
	nextSub   int
	subs      map[string]map[int]func(Event)

	events chan Event
	done   chan struct{}
}

// New creates a channel for the given websocket URL. No connection is
// made until Connect.
func New(url string) *Channel {
	return &Channel{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		subs:   make(map[string]map[int]func(Event)),
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
}

// Connected reports whether the channel currently has a live
// connection.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect dials the backend, retrying up to the attempt limit with
// backoff that starts at one second and caps at five. On success the
// read loop starts and Connected reports true.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("channel closed")
	}
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return errors.New("channel closed")
	}
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// dial runs the bounded retry loop for a single connection attempt
// series.
func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.done:
			return nil, errors.New("channel closed")
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return nil, fmt.Errorf("connecting to %s after %d attempts: %w", c.url, maxAttempts, lastErr)
}

// readLoop reads events until the connection drops, then attempts to
// reconnect with the same policy. It exits when Close is called or
// reconnection is exhausted.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			c.mu.Lock()
			c.connected = false
			closed := c.closed
			c.mu.Unlock()
			conn.Close()

			if closed {
				return
			}
			log.Printf("realtime: connection lost: %v", err)

			next, dialErr := c.dial(context.Background())
			if dialErr != nil {
				log.Printf("realtime: reconnect failed: %v", dialErr)
				return
			}

			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				next.Close()
				return
			}
			c.conn = next
			c.connected = true
			c.mu.Unlock()
			conn = next
			continue
		}

		c.dispatch(ev)
	}
}

// dispatch fans an event out to its subscribers and onto the UI
// bridge channel. Delivery never blocks; a full bridge drops.
func (c *Channel) dispatch(ev Event) {
	c.mu.Lock()
	handlers := make([]func(Event), 0, len(c.subs[ev.Name]))
	for _, fn := range c.subs[ev.Name] {
		handlers = append(handlers, fn)
	}
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}

	select {
	case c.events <- ev:
	default:
	}
}

// Emit sends an event with the given payload. Presence-announce is
// fire-and-forget: callers log the error and move on, no retry.
func (c *Channel) Emit(name string, payload interface{}) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()

	if !connected || conn == nil {
		return errors.New("channel not connected")
	}

	// The websocket allows one concurrent writer; serialize emits.
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := conn.WriteJSON(outbound{Name: name, Payload: payload}); err != nil {
		return fmt.Errorf("emitting %s: %w", name, err)
	}
	return nil
}

// Subscribe registers a handler for the named event and returns a
// cancel func that unregisters it. Handlers run on the read loop
// goroutine.
func (c *Channel) Subscribe(name string, fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSub++
	id := c.nextSub
	if c.subs[name] == nil {
		c.subs[name] = make(map[int]func(Event))
	}
	c.subs[name][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if handlers, ok := c.subs[name]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(c.subs, name)
			}
		}
	}
}

// WaitForEvent returns a command that delivers the next received
// event to the UI loop. Re-issue it after handling each EventMsg to
// keep listening.
func (c *Channel) WaitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return nil
			}
			return EventMsg{Event: ev}
		case <-c.done:
			return nil
		}
	}
}

// Close shuts the channel down: the connection drops, the read loop
// exits, and pending WaitForEvent commands resolve to nil.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	close(c.done)
	if conn != nil {
		return conn.Close()
	}
	return nil
}
