package media

import "context"

// Handler receives control events. Backends may call it from any goroutine,
// so implementations must not block.
type Handler func(Event)

// Controls is the capability every media control backend exposes
type Controls interface {
	// Attach registers the sole event handler and starts event delivery
	Attach(h Handler) error

	// SetPlayback publishes the current playback status
	SetPlayback(status PlaybackStatus) error

	// SetMetadata publishes the current track metadata
	SetMetadata(md Metadata) error

	// Close stops event delivery and releases resources
	Close() error
}

// Closer is implemented by backends that can be closed from the user's
// side, such as a window or an interactive terminal.
type Closer interface {
	// Done is closed once the user has closed the session
	Done() <-chan struct{}
}

// Observer is implemented by backends that render reflected snapshots,
// such as the song cursor, in addition to the pushed playback state.
type Observer interface {
	// Observe consumes snapshots until ctx is done or the channel closes
	Observe(ctx context.Context, snapshots <-chan Snapshot)
}
