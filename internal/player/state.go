package player

import (
	"fmt"

	"github.com/jfmyers9/mediakeys/internal/media"
)

// State is the player's view of playback. It is owned by the main loop
// goroutine and never shared.
type State struct {
	Status media.PlaybackStatus // Current playback status
	Cursor uint8                // Index into the playlist, wraps at 255
}

// InitialState returns the state the player starts in
func InitialState() State {
	return State{Status: media.StatusPlaying, Cursor: 0}
}

// String formats the state the way the diagnostic stream shows it
func (s State) String() string {
	return fmt.Sprintf("%s (song %d)", s.Status, s.Cursor)
}

// ChangePolicy decides when an applied event counts as a change
type ChangePolicy string

const (
	// ChangeAny reports every applied event as a change, even a Play while
	// already playing.
	ChangeAny ChangePolicy = "any"

	// ChangeStrict reports a change only when the state differs afterwards
	ChangeStrict ChangePolicy = "strict"
)

// ParseChangePolicy validates a configured change policy
func ParseChangePolicy(s string) (ChangePolicy, error) {
	switch ChangePolicy(s) {
	case "", ChangeAny:
		return ChangeAny, nil
	case ChangeStrict:
		return ChangeStrict, nil
	default:
		return "", fmt.Errorf("invalid change policy %q (must be 'any' or 'strict')", s)
	}
}

// Apply updates the state for one event and reports whether it counts as
// a change. Every known event counts.
func (s *State) Apply(e media.Event) bool {
	switch e {
	case media.EventToggle:
		if s.Status == media.StatusPlaying {
			s.Status = media.StatusPaused
		} else {
			s.Status = media.StatusPlaying
		}
	case media.EventPlay:
		s.Status = media.StatusPlaying
	case media.EventPause:
		s.Status = media.StatusPaused
	case media.EventNext:
		s.Cursor++
	case media.EventPrevious:
		s.Cursor--
	default:
		return false
	}
	return true
}

// Fold applies events in order and ORs their change results under the
// given policy.
func (s *State) Fold(events []media.Event, policy ChangePolicy) bool {
	changed := false
	for _, e := range events {
		before := *s
		applied := s.Apply(e)
		if policy == ChangeStrict {
			applied = applied && *s != before
		}
		changed = changed || applied
	}
	return changed
}
