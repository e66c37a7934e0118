// Package events carries media control events from backend goroutines to
// the player's main loop.
package events

import (
	"errors"
	"sync/atomic"

	"github.com/jfmyers9/mediakeys/internal/media"
)

// DefaultCapacity matches the backlog a single tick is expected to absorb
const DefaultCapacity = 32

var (
	// ErrOverflow is returned by Send when the channel is full. The event is dropped.
	ErrOverflow = errors.New("event channel full")

	// ErrClosed is returned by Send after Close
	ErrClosed = errors.New("event channel closed")
)

// Channel is a bounded FIFO of control events.
// Send may be called from any goroutine; Drain belongs to a single consumer.
type Channel struct {
	queue  chan media.Event
	closed atomic.Bool
}

// New creates a channel holding at most capacity events.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{queue: make(chan media.Event, capacity)}
}

// Send enqueues an event without blocking
func (c *Channel) Send(e media.Event) error {
	// The underlying chan is never closed, so a late Send cannot panic.
	if c.closed.Load() {
		return ErrClosed
	}
	select {
	case c.queue <- e:
		return nil
	default:
		return ErrOverflow
	}
}

// Drain removes and returns every queued event in arrival order.
// It returns nil when nothing is queued.
func (c *Channel) Drain() []media.Event {
	var out []media.Event
	for {
		select {
		case e := <-c.queue:
			out = append(out, e)
		default:
			return out
		}
	}
}

// Close rejects further sends. Events already queued stay drainable.
func (c *Channel) Close() {
	c.closed.Store(true)
}

// Len returns the number of queued events
func (c *Channel) Len() int {
	return len(c.queue)
}

// Cap returns the channel capacity
func (c *Channel) Cap() int {
	return cap(c.queue)
}
