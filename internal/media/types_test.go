package media

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		input   string
		want    Event
		wantErr bool
	}{
		{input: "toggle", want: EventToggle},
		{input: "playpause", want: EventToggle},
		{input: "PLAY", want: EventPlay},
		{input: " pause ", want: EventPause},
		{input: "next", want: EventNext},
		{input: "prev", want: EventPrevious},
		{input: "previous", want: EventPrevious},
		{input: "stop", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEvent(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseEvent(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEvent(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseEvent(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEventJSON(t *testing.T) {
	var payload struct {
		Event Event `json:"event"`
	}
	if err := json.Unmarshal([]byte(`{"event":"prev"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Event != EventPrevious {
		t.Errorf("event = %v, want previous", payload.Event)
	}

	if _, err := json.Marshal(struct{ E Event }{Event(42)}); err == nil {
		t.Error("expected error marshalling out-of-range event")
	}
}

func TestPlaybackStatusText(t *testing.T) {
	data, err := json.Marshal(StatusPaused)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"Paused"` {
		t.Errorf("marshal = %s, want \"Paused\"", data)
	}

	var s PlaybackStatus
	if err := json.Unmarshal([]byte(`"playing"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != StatusPlaying {
		t.Errorf("status = %v, want Playing", s)
	}
}

func TestPushErrorUnwrap(t *testing.T) {
	err := error(&PushError{Op: "set_playback", Err: ErrNoSession})
	if !errors.Is(err, ErrNoSession) {
		t.Error("PushError should unwrap to ErrNoSession")
	}
	if err.Error() != "set_playback: no active media session" {
		t.Errorf("Error() = %q", err.Error())
	}
}
