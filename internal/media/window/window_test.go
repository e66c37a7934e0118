package window

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
	"github.com/jfmyers9/mediakeys/internal/player"
)

// newSimulatedWindow returns a window drawing to an in-memory screen
func newSimulatedWindow(t *testing.T) (*Window, tcell.SimulationScreen) {
	t.Helper()
	w := New("test", zerolog.Nop())
	screen := tcell.NewSimulationScreen("UTF-8")
	w.app.SetScreen(screen)
	return w, screen
}

// waitRunning blocks until the tview event loop processes updates
func waitRunning(t *testing.T, w *Window) {
	t.Helper()
	ready := make(chan struct{})
	go w.app.QueueUpdate(func() { close(ready) })
	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("window event loop never started")
	}
}

// returnsWithin fails the test if fn does not return in d
func returnsWithin(t *testing.T, d time.Duration, what string, fn func()) {
	t.Helper()
	finished := make(chan struct{})
	go func() {
		fn()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(d):
		t.Fatalf("%s blocked for %v", what, d)
	}
}

func waitForText(t *testing.T, view interface{ GetText(bool) string }, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !strings.Contains(view.GetText(true), want) {
		select {
		case <-deadline:
			t.Fatalf("text %q never contained %q", view.GetText(true), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHandleKey(t *testing.T) {
	tests := []struct {
		name string
		key  *tcell.EventKey
		want media.Event
	}{
		{name: "space toggles", key: tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), want: media.EventToggle},
		{name: "n next", key: tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone), want: media.EventNext},
		{name: "p previous", key: tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone), want: media.EventPrevious},
		{name: "> play", key: tcell.NewEventKey(tcell.KeyRune, '>', tcell.ModNone), want: media.EventPlay},
		{name: "| pause", key: tcell.NewEventKey(tcell.KeyRune, '|', tcell.ModNone), want: media.EventPause},
		{name: "] play", key: tcell.NewEventKey(tcell.KeyRune, ']', tcell.ModNone), want: media.EventPlay},
		{name: "[ pause", key: tcell.NewEventKey(tcell.KeyRune, '[', tcell.ModNone), want: media.EventPause},
		{name: "right arrow next", key: tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), want: media.EventNext},
		{name: "left arrow previous", key: tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), want: media.EventPrevious},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New("test", zerolog.Nop())
			var got []media.Event
			w.handler = func(e media.Event) { got = append(got, e) }

			if rest := w.handleKey(tt.key); rest != nil {
				t.Errorf("handleKey passed the key through")
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("events = %v, want [%v]", got, tt.want)
			}
		})
	}
}

func TestHandleKey_UnboundKeyPassesThrough(t *testing.T) {
	w := New("test", zerolog.Nop())
	called := false
	w.handler = func(media.Event) { called = true }

	key := tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)
	if rest := w.handleKey(key); rest != key {
		t.Error("unbound key was swallowed")
	}
	if called {
		t.Error("unbound key dispatched an event")
	}
}

func TestPushBeforeAttach(t *testing.T) {
	w := New("test", zerolog.Nop())
	if err := w.SetPlayback(media.StatusPaused); !errors.Is(err, media.ErrNoSession) {
		t.Errorf("SetPlayback before Attach = %v, want ErrNoSession", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-w.Done():
	default:
		t.Error("Done not closed after Close")
	}
	if err := w.Attach(func(media.Event) {}); err == nil {
		t.Error("Attach after Close succeeded")
	}
}

func TestNowPlayingText(t *testing.T) {
	md := media.Metadata{Title: "When The Sun Hits", Album: "Souvlaki", Artist: "Slowdive"}

	playing := nowPlayingText(md, media.StatusPlaying)
	for _, want := range []string{"When The Sun Hits", "Slowdive", "Souvlaki", "▶"} {
		if !strings.Contains(playing, want) {
			t.Errorf("playing text missing %q: %q", want, playing)
		}
	}

	paused := nowPlayingText(md, media.StatusPaused)
	if !strings.Contains(paused, "⏸") {
		t.Errorf("paused text missing pause icon: %q", paused)
	}

	if empty := nowPlayingText(media.Metadata{}, media.StatusPlaying); !strings.Contains(empty, "Nothing to show") {
		t.Errorf("empty metadata text = %q", empty)
	}
}

func TestNowPlayingText_EscapesTags(t *testing.T) {
	text := nowPlayingText(media.Metadata{Title: "[red]Song"}, media.StatusPlaying)
	if strings.Contains(text, "[white::b][red]Song") {
		t.Errorf("title color tag not escaped: %q", text)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name   string
		status media.PlaybackStatus
		cursor int
		last   string
		want   string
	}{
		{name: "status only", status: media.StatusPaused, cursor: -1, want: "Paused"},
		{name: "with song", status: media.StatusPlaying, cursor: 3, want: "Playing (song 3)"},
		{name: "song zero", status: media.StatusPaused, cursor: 0, want: "Paused (song 0)"},
		{name: "last event", status: media.StatusPlaying, cursor: 1, last: "next", want: "Playing (song 1)  [gray](last: next)[-]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusText(tt.status, tt.cursor, tt.last); got != tt.want {
				t.Errorf("statusText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPushesRenderWhileRunning(t *testing.T) {
	w, _ := newSimulatedWindow(t)
	if err := w.Attach(func(media.Event) {}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer w.Close()

	md := media.Metadata{Title: "Alison", Album: "Souvlaki", Artist: "Slowdive"}
	if err := w.SetMetadata(md); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := w.SetPlayback(media.StatusPaused); err != nil {
		t.Fatalf("SetPlayback: %v", err)
	}

	waitForText(t, w.nowPlaying, "Alison")
	waitForText(t, w.status, "Paused")
}

func TestPushAfterWindowClosedDoesNotBlock(t *testing.T) {
	w, screen := newSimulatedWindow(t)
	if err := w.Attach(func(media.Event) {}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	waitRunning(t, w)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("window did not close on q")
	}

	returnsWithin(t, time.Second, "pushes after close", func() {
		for i := 0; i < 10; i++ {
			if err := w.SetPlayback(media.StatusPaused); !errors.Is(err, media.ErrNoSession) {
				t.Errorf("SetPlayback after close = %v, want ErrNoSession", err)
			}
			if err := w.SetMetadata(media.Metadata{Title: "Dagger"}); !errors.Is(err, media.ErrNoSession) {
				t.Errorf("SetMetadata after close = %v, want ErrNoSession", err)
			}
		}
	})
	returnsWithin(t, time.Second, "Close after q", func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
}

func TestPushesRacingWindowExitDoNotBlock(t *testing.T) {
	w, _ := newSimulatedWindow(t)
	if err := w.Attach(func(media.Event) {}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	waitRunning(t, w)

	returnsWithin(t, 2*time.Second, "pushes racing Stop", func() {
		stopped := make(chan struct{})
		go func() {
			w.app.Stop()
			close(stopped)
		}()
		for i := 0; i < 200; i++ {
			_ = w.SetPlayback(media.StatusPaused)
			_ = w.SetMetadata(media.Metadata{Title: "Souvlaki Space Station"})
		}
		<-stopped
	})

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after Stop")
	}
}

func TestCloseRightAfterAttach(t *testing.T) {
	w, _ := newSimulatedWindow(t)
	if err := w.Attach(func(media.Event) {}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	returnsWithin(t, 3*time.Second, "Close right after Attach", func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	select {
	case <-w.Done():
	default:
		t.Error("Done not closed after Close")
	}
}

func TestObserveShowsSongCursor(t *testing.T) {
	w, _ := newSimulatedWindow(t)
	if err := w.Attach(func(media.Event) {}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	snapshots := make(chan media.Snapshot, 1)
	observed := make(chan struct{})
	go func() {
		w.Observe(ctx, snapshots)
		close(observed)
	}()

	snapshots <- media.Snapshot{Status: media.StatusPlaying, Cursor: 2}
	waitForText(t, w.status, "Playing (song 2)")

	cancel()
	select {
	case <-observed:
	case <-time.After(time.Second):
		t.Fatal("Observe did not return after cancel")
	}
}

func TestPlayerLoopWithWindowStopsOnDeadline(t *testing.T) {
	w, _ := newSimulatedWindow(t)

	snapshots := make(chan media.Snapshot, 16)
	p := player.New(player.Config{
		Backend:     "window",
		Metadata:    media.Metadata{Title: "When The Sun Hits", Album: "Souvlaki", Artist: "Slowdive"},
		Diagnostics: io.Discard,
	}, w, zerolog.Nop(), player.WithObserver(snapshots))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go w.Observe(ctx, snapshots)

	returnsWithin(t, 5*time.Second, "player loop with window", func() {
		if err := p.Run(ctx); err != nil {
			t.Errorf("Run: %v", err)
		}
	})

	select {
	case <-w.Done():
	default:
		t.Error("window still open after the loop stopped")
	}
	w.mu.Lock()
	title := w.md.Title
	w.mu.Unlock()
	if title != "When The Sun Hits" {
		t.Errorf("window metadata title = %q, want When The Sun Hits", title)
	}
}
