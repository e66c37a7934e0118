// Package media defines the media control events, playback state and the
// capability interface shared by every control backend.
package media

import (
	"fmt"
	"strings"
	"time"
)

// Event is a control request delivered by a media control source
type Event int

const (
	EventToggle   Event = iota // Flip between playing and paused
	EventPlay                  // Start or resume playback
	EventPause                 // Pause playback
	EventNext                  // Skip to the next track
	EventPrevious              // Go back to the previous track
)

// String returns the wire name of the event
func (e Event) String() string {
	switch e {
	case EventToggle:
		return "toggle"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventNext:
		return "next"
	case EventPrevious:
		return "previous"
	default:
		return "unknown"
	}
}

// ParseEvent converts a name such as "next" or "prev" into an Event
func ParseEvent(s string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toggle", "playpause":
		return EventToggle, nil
	case "play":
		return EventPlay, nil
	case "pause":
		return EventPause, nil
	case "next":
		return EventNext, nil
	case "previous", "prev":
		return EventPrevious, nil
	default:
		return 0, fmt.Errorf("unknown media event %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (e Event) MarshalText() ([]byte, error) {
	if e < EventToggle || e > EventPrevious {
		return nil, fmt.Errorf("invalid media event %d", int(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (e *Event) UnmarshalText(text []byte) error {
	parsed, err := ParseEvent(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// PlaybackStatus is the application's belief about current playback
type PlaybackStatus int

const (
	StatusPlaying PlaybackStatus = iota
	StatusPaused
)

// String returns "Playing" or "Paused"
func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s PlaybackStatus) MarshalText() ([]byte, error) {
	if s != StatusPlaying && s != StatusPaused {
		return nil, fmt.Errorf("invalid playback status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *PlaybackStatus) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "playing":
		*s = StatusPlaying
	case "paused":
		*s = StatusPaused
	default:
		return fmt.Errorf("unknown playback status %q", text)
	}
	return nil
}

// Metadata describes the track shown in the media UI.
// Empty fields are treated as unset.
type Metadata struct {
	Title    string `json:"title,omitempty"`
	Album    string `json:"album,omitempty"`
	Artist   string `json:"artist,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

// IsZero reports whether no field is set
func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

// Snapshot is the state published by one reflect step
type Snapshot struct {
	Status   PlaybackStatus `json:"status"`
	Cursor   uint8          `json:"cursor"`
	Metadata Metadata       `json:"metadata"`
	At       time.Time      `json:"at"`
}
