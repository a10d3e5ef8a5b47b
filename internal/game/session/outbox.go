package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cory-johannsen/parlor/internal/protocol"
)

// DefaultOutboxSize is used when a non-positive buffer size is requested.
const DefaultOutboxSize = 64

var (
	// ErrOutboxClosed is returned by Push after Close.
	ErrOutboxClosed = errors.New("outbox closed")
	// ErrOutboxFull is returned by Push when the buffer has no free slot.
	ErrOutboxFull = errors.New("outbox buffer full")
)

// Outbox is a connection's buffered queue of outbound events. The transport
// owning the connection drains Events and writes each event to the wire.
type Outbox struct {
	connID string
	events chan protocol.Event
	mu     sync.Mutex
	closed bool
}

// NewOutbox creates an Outbox for the given connection.
//
// Precondition: connID must be non-empty.
// Postcondition: Returns an Outbox with an open events channel.
func NewOutbox(connID string, bufferSize int) *Outbox {
	if bufferSize <= 0 {
		bufferSize = DefaultOutboxSize
	}
	return &Outbox{
		connID: connID,
		events: make(chan protocol.Event, bufferSize),
	}
}

// ConnID returns the owning connection's identifier.
func (o *Outbox) ConnID() string {
	return o.connID
}

// Push enqueues ev without blocking.
//
// Postcondition: ev is enqueued, or ErrOutboxClosed / ErrOutboxFull is returned (wrapped).
func (o *Outbox) Push(ev protocol.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("connection %s: %w", o.connID, ErrOutboxClosed)
	}
	select {
	case o.events <- ev:
		return nil
	default:
		return fmt.Errorf("connection %s: %w", o.connID, ErrOutboxFull)
	}
}

// Events returns the read-only events channel. It is closed by Close.
func (o *Outbox) Events() <-chan protocol.Event {
	return o.events
}

// Close marks the outbox closed and closes the events channel.
// Events already buffered remain readable.
//
// Postcondition: Further Push calls return ErrOutboxClosed.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.events)
	}
}

// IsClosed reports whether the outbox has been closed.
func (o *Outbox) IsClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
