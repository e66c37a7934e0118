package player

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
)

// PushPolicy decides what happens when the backend rejects an update
type PushPolicy string

const (
	// PushLog logs rejected pushes and keeps the loop running
	PushLog PushPolicy = "log"

	// PushFatal returns rejected pushes as errors, stopping the loop
	PushFatal PushPolicy = "fatal"
)

// ParsePushPolicy validates a configured push policy
func ParsePushPolicy(s string) (PushPolicy, error) {
	switch PushPolicy(s) {
	case "", PushLog:
		return PushLog, nil
	case PushFatal:
		return PushFatal, nil
	default:
		return "", fmt.Errorf("invalid push policy %q (must be 'log' or 'fatal')", s)
	}
}

// Reflector pushes player state back out to the media controls, the
// diagnostic stream and any snapshot observers.
type Reflector struct {
	controls  media.Controls
	diag      io.Writer
	policy    PushPolicy
	logger    zerolog.Logger
	observers []chan<- media.Snapshot

	metadata   media.Metadata   // Last metadata pushed
	playlist   []media.Metadata // Optional tracks indexed by cursor
	lastCursor uint8
	now        func() time.Time
}

// NewReflector creates a Reflector writing status lines to diag
func NewReflector(controls media.Controls, diag io.Writer, policy PushPolicy, logger zerolog.Logger) *Reflector {
	return &Reflector{
		controls: controls,
		diag:     diag,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// AddObserver registers a channel that receives a snapshot after every
// reflect step. Sends never block; a full observer misses the snapshot.
func (r *Reflector) AddObserver(ch chan<- media.Snapshot) {
	r.observers = append(r.observers, ch)
}

// SetLibrary replaces the default metadata and the playlist
func (r *Reflector) SetLibrary(md media.Metadata, playlist []media.Metadata) {
	r.metadata = md
	r.playlist = playlist
}

// Start publishes the initial state and metadata
func (r *Reflector) Start(s State) error {
	if err := r.push("set_playback", r.controls.SetPlayback(s.Status)); err != nil {
		return err
	}
	if err := r.push("set_metadata", r.controls.SetMetadata(r.trackFor(s.Cursor))); err != nil {
		return err
	}
	r.lastCursor = s.Cursor
	r.publish(s)
	return nil
}

// Refresh re-pushes metadata for the current track, after the library changed
func (r *Reflector) Refresh(s State) error {
	if err := r.push("set_metadata", r.controls.SetMetadata(r.trackFor(s.Cursor))); err != nil {
		return err
	}
	r.publish(s)
	return nil
}

// Reflect pushes the state outward when changed is true. When changed is
// false it performs no I/O.
func (r *Reflector) Reflect(s State, changed bool) error {
	if !changed {
		return nil
	}

	if err := r.push("set_playback", r.controls.SetPlayback(s.Status)); err != nil {
		return err
	}

	if len(r.playlist) > 0 && s.Cursor != r.lastCursor {
		if err := r.push("set_metadata", r.controls.SetMetadata(r.trackFor(s.Cursor))); err != nil {
			return err
		}
	}
	r.lastCursor = s.Cursor

	fmt.Fprintln(r.diag, s.String())
	r.logger.Debug().
		Str("status", s.Status.String()).
		Uint8("cursor", s.Cursor).
		Msg("Reflected state")

	r.publish(s)
	return nil
}

// trackFor returns the metadata shown for a cursor position
func (r *Reflector) trackFor(cursor uint8) media.Metadata {
	if len(r.playlist) == 0 {
		return r.metadata
	}
	return r.playlist[int(cursor)%len(r.playlist)]
}

// push applies the push policy to the result of an outbound call
func (r *Reflector) push(op string, err error) error {
	if err == nil {
		return nil
	}
	pushErr := &media.PushError{Op: op, Err: err}
	if r.policy == PushFatal {
		return pushErr
	}
	r.logger.Warn().Err(pushErr).Msg("Media controls rejected update")
	return nil
}

func (r *Reflector) publish(s State) {
	if len(r.observers) == 0 {
		return
	}
	snap := media.Snapshot{
		Status:   s.Status,
		Cursor:   s.Cursor,
		Metadata: r.trackFor(s.Cursor),
		At:       r.now(),
	}
	for _, ch := range r.observers {
		select {
		case ch <- snap:
		default:
			r.logger.Debug().Msg("Snapshot observer busy, skipping")
		}
	}
}
