package player

import (
	"testing"

	"github.com/jfmyers9/mediakeys/internal/media"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		start State
		event media.Event
		want  State
	}{
		{
			name:  "toggle pauses when playing",
			start: State{Status: media.StatusPlaying},
			event: media.EventToggle,
			want:  State{Status: media.StatusPaused},
		},
		{
			name:  "toggle plays when paused",
			start: State{Status: media.StatusPaused, Cursor: 3},
			event: media.EventToggle,
			want:  State{Status: media.StatusPlaying, Cursor: 3},
		},
		{
			name:  "play while playing",
			start: State{Status: media.StatusPlaying},
			event: media.EventPlay,
			want:  State{Status: media.StatusPlaying},
		},
		{
			name:  "pause while playing",
			start: State{Status: media.StatusPlaying, Cursor: 7},
			event: media.EventPause,
			want:  State{Status: media.StatusPaused, Cursor: 7},
		},
		{
			name:  "next advances cursor",
			start: State{Cursor: 4},
			event: media.EventNext,
			want:  State{Cursor: 5},
		},
		{
			name:  "next wraps at max",
			start: State{Cursor: 255},
			event: media.EventNext,
			want:  State{Cursor: 0},
		},
		{
			name:  "previous wraps at zero",
			start: State{Cursor: 0},
			event: media.EventPrevious,
			want:  State{Cursor: 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.start
			if changed := s.Apply(tt.event); !changed {
				t.Errorf("Apply(%v) reported no change", tt.event)
			}
			if s != tt.want {
				t.Errorf("Apply(%v) = %+v, want %+v", tt.event, s, tt.want)
			}
		})
	}
}

func TestApply_IsDeterministic(t *testing.T) {
	all := []media.Event{
		media.EventToggle, media.EventPlay, media.EventPause,
		media.EventNext, media.EventPrevious,
	}
	starts := []State{
		{Status: media.StatusPlaying, Cursor: 0},
		{Status: media.StatusPaused, Cursor: 128},
		{Status: media.StatusPaused, Cursor: 255},
	}

	for _, start := range starts {
		for _, e := range all {
			a, b := start, start
			ca, cb := a.Apply(e), b.Apply(e)
			if a != b || ca != cb {
				t.Errorf("Apply(%v) from %+v not deterministic: %+v/%v vs %+v/%v",
					e, start, a, ca, b, cb)
			}
		}
	}
}

func TestApply_ToggleIsSelfInverse(t *testing.T) {
	for _, status := range []media.PlaybackStatus{media.StatusPlaying, media.StatusPaused} {
		s := State{Status: status, Cursor: 9}
		s.Apply(media.EventToggle)
		s.Apply(media.EventToggle)
		if s.Status != status {
			t.Errorf("toggle twice from %v = %v", status, s.Status)
		}
	}
}

func TestApply_UnknownEvent(t *testing.T) {
	s := InitialState()
	if s.Apply(media.Event(99)) {
		t.Error("unknown event reported a change")
	}
	if s != InitialState() {
		t.Errorf("unknown event modified state: %+v", s)
	}
}

func TestFold_ChangePolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy ChangePolicy
		events []media.Event
		want   bool
	}{
		{name: "no events", policy: ChangeAny, events: nil, want: false},
		{name: "any counts redundant play", policy: ChangeAny, events: []media.Event{media.EventPlay}, want: true},
		{name: "strict ignores redundant play", policy: ChangeStrict, events: []media.Event{media.EventPlay}, want: false},
		{name: "strict sees pause", policy: ChangeStrict, events: []media.Event{media.EventPlay, media.EventPause}, want: true},
		{name: "strict sees cursor moves", policy: ChangeStrict, events: []media.Event{media.EventNext}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := InitialState()
			if got := s.Fold(tt.events, tt.policy); got != tt.want {
				t.Errorf("Fold() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseChangePolicy(t *testing.T) {
	if p, err := ParseChangePolicy(""); err != nil || p != ChangeAny {
		t.Errorf("ParseChangePolicy(\"\") = %q, %v", p, err)
	}
	if p, err := ParseChangePolicy("strict"); err != nil || p != ChangeStrict {
		t.Errorf("ParseChangePolicy(strict) = %q, %v", p, err)
	}
	if _, err := ParseChangePolicy("sometimes"); err == nil {
		t.Error("expected error for invalid policy")
	}
}

func TestStateString(t *testing.T) {
	s := State{Status: media.StatusPaused, Cursor: 2}
	if got := s.String(); got != "Paused (song 2)" {
		t.Errorf("String() = %q, want %q", got, "Paused (song 2)")
	}
}
