// Package window implements media controls as a full-screen terminal
// window. Key presses become control events and closing the window ends
// the session.
package window

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
)

const helpText = "[gray]space:toggle  ]:play  [:pause  n:next  p:prev  q:quit[-]"

// closeTimeout bounds how long Close waits for the window to stop
const closeTimeout = 2 * time.Second

// Window is a media.Controls backend rendered with tview
type Window struct {
	app        *tview.Application
	nowPlaying *tview.TextView
	status     *tview.TextView
	logger     zerolog.Logger

	mu        sync.Mutex
	handler   media.Handler
	md        media.Metadata
	playback  media.PlaybackStatus
	cursor    uint8
	hasCursor bool
	lastEvent string
	running   bool
	closed    bool

	redraw    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a window titled with the player's display name
func New(title string, logger zerolog.Logger) *Window {
	w := &Window{
		app:    tview.NewApplication(),
		logger: logger.With().Str("component", "window").Logger(),
		redraw: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	w.setupUI(title)
	return w
}

// setupUI creates the layout
func (w *Window) setupUI(title string) {
	w.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	w.nowPlaying.SetBorder(true).
		SetTitle(" " + title + " ").
		SetTitleAlign(tview.AlignLeft)

	w.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	w.status.SetBorder(true)

	help := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(helpText)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(w.nowPlaying, 0, 3, false).
		AddItem(w.status, 3, 1, false).
		AddItem(help, 1, 1, false)

	w.app.SetInputCapture(w.handleKey)
	w.app.SetRoot(flex, true)
	w.render()
}

// Attach registers the handler and opens the window
func (w *Window) Attach(h media.Handler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return &media.RegistrationError{Backend: "window", Err: media.ErrNoSession}
	}
	if w.handler != nil {
		return media.ErrAlreadyAttached
	}
	w.handler = h
	w.running = true

	go func() {
		if err := w.app.Run(); err != nil {
			w.logger.Error().Err(err).Msg("Window error")
		}
		w.finish()
	}()
	go w.drawLoop()
	return nil
}

// drawLoop applies queued redraws on the tview event goroutine. Pushes only
// signal it, so a window that stops mid-draw can park this goroutine but
// never the caller.
func (w *Window) drawLoop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.redraw:
			w.app.QueueUpdateDraw(w.render)
		}
	}
}

// requestRedraw schedules a redraw without waiting for it
func (w *Window) requestRedraw() {
	select {
	case w.redraw <- struct{}{}:
	default:
	}
}

// handleKey maps key presses to control events
func (w *Window) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		w.app.Stop()
		return nil
	case tcell.KeyRight:
		w.dispatch(media.EventNext)
		return nil
	case tcell.KeyLeft:
		w.dispatch(media.EventPrevious)
		return nil
	}

	switch event.Rune() {
	case 'q', 'Q':
		w.app.Stop()
		return nil
	case ' ':
		w.dispatch(media.EventToggle)
		return nil
	case ']', '>':
		w.dispatch(media.EventPlay)
		return nil
	case '[', '|':
		w.dispatch(media.EventPause)
		return nil
	case 'n', 'N':
		w.dispatch(media.EventNext)
		return nil
	case 'p', 'P':
		w.dispatch(media.EventPrevious)
		return nil
	}
	return event
}

func (w *Window) dispatch(e media.Event) {
	w.mu.Lock()
	h := w.handler
	w.lastEvent = e.String()
	w.mu.Unlock()

	if h != nil {
		h(e)
	}
}

// SetPlayback shows the playback status
func (w *Window) SetPlayback(status media.PlaybackStatus) error {
	w.mu.Lock()
	if !w.running || w.closed {
		w.mu.Unlock()
		return media.ErrNoSession
	}
	w.playback = status
	w.mu.Unlock()

	w.requestRedraw()
	return nil
}

// SetMetadata shows the track
func (w *Window) SetMetadata(md media.Metadata) error {
	w.mu.Lock()
	if !w.running || w.closed {
		w.mu.Unlock()
		return media.ErrNoSession
	}
	w.md = md
	w.mu.Unlock()

	w.requestRedraw()
	return nil
}

// Observe shows the song cursor from reflected snapshots
func (w *Window) Observe(ctx context.Context, snapshots <-chan media.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			w.mu.Lock()
			w.cursor = snap.Cursor
			w.hasCursor = true
			w.playback = snap.Status
			w.mu.Unlock()
			w.requestRedraw()
		}
	}
}

// render updates all panels; it runs on the tview event goroutine
func (w *Window) render() {
	w.mu.Lock()
	md, playback, last := w.md, w.playback, w.lastEvent
	cursor := -1
	if w.hasCursor {
		cursor = int(w.cursor)
	}
	w.mu.Unlock()

	w.nowPlaying.SetText(nowPlayingText(md, playback))
	w.status.SetText(statusText(playback, cursor, last))
}

// Done is closed when the window is closed
func (w *Window) Done() <-chan struct{} {
	return w.done
}

// Close closes the window. Stop is a no-op until Run has created the
// screen, so it is retried until the window reports done.
func (w *Window) Close() error {
	w.mu.Lock()
	running := w.running
	w.closed = true
	w.mu.Unlock()

	if !running {
		w.closeOnce.Do(func() { close(w.done) })
		return nil
	}

	timeout := time.NewTimer(closeTimeout)
	defer timeout.Stop()
	retry := time.NewTicker(20 * time.Millisecond)
	defer retry.Stop()

	for {
		w.app.Stop()
		select {
		case <-w.done:
			return nil
		case <-timeout.C:
			return errors.New("window did not stop in time")
		case <-retry.C:
		}
	}
}

func (w *Window) finish() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.closeOnce.Do(func() { close(w.done) })
}

// nowPlayingText formats the now playing panel
func nowPlayingText(md media.Metadata, status media.PlaybackStatus) string {
	if md.IsZero() {
		return "\n\n[gray]Nothing to show[-]"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(md.Title)))
	sb.WriteString(fmt.Sprintf("[yellow]%s[-]\n", tview.Escape(md.Artist)))
	sb.WriteString(fmt.Sprintf("[gray]%s[-]", tview.Escape(md.Album)))

	stateIcon := "[green]▶[-]" // Play triangle
	if status == media.StatusPaused {
		stateIcon = "[yellow]⏸[-]" // Pause icon
	}
	sb.WriteString(fmt.Sprintf("\n\n%s", stateIcon))
	return sb.String()
}

// statusText formats the status bar. A negative cursor is not shown.
func statusText(status media.PlaybackStatus, cursor int, lastEvent string) string {
	text := status.String()
	if cursor >= 0 {
		text = fmt.Sprintf("%s (song %d)", text, cursor)
	}
	if lastEvent == "" {
		return text
	}
	return fmt.Sprintf("%s  [gray](last: %s)[-]", text, lastEvent)
}
