// Package terminal implements media controls as an interactive prompt on
// the controlling terminal.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
)

const usage = "commands: toggle (or empty line), play, pause, next, prev, quit"

// lineReader is the subset of *readline.Instance the prompt uses
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Refresh()
	Close() error
}

// Prompt is a media.Controls backend reading commands line by line
type Prompt struct {
	logger zerolog.Logger
	out    io.Writer
	open   func(prompt string) (lineReader, error)

	mu      sync.Mutex
	rl      lineReader
	handler media.Handler
	status  media.PlaybackStatus
	md      media.Metadata
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a prompt backend on stdin/stdout
func New(logger zerolog.Logger) *Prompt {
	return &Prompt{
		logger: logger.With().Str("component", "terminal").Logger(),
		out:    os.Stdout,
		open: func(prompt string) (lineReader, error) {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          prompt,
				HistoryLimit:    100,
				InterruptPrompt: "^C",
				EOFPrompt:       "quit",
			})
			if err != nil {
				return nil, err
			}
			return rl, nil
		},
		done: make(chan struct{}),
	}
}

// Attach opens the prompt and starts reading commands
func (p *Prompt) Attach(h media.Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return &media.RegistrationError{Backend: "terminal", Err: media.ErrNoSession}
	}
	if p.handler != nil {
		return media.ErrAlreadyAttached
	}

	rl, err := p.open(p.promptText())
	if err != nil {
		return &media.RegistrationError{Backend: "terminal", Err: err}
	}
	p.rl = rl
	p.handler = h

	fmt.Fprintln(p.out, usage)
	go p.loop(rl, h)
	return nil
}

func (p *Prompt) loop(rl lineReader, h media.Handler) {
	defer p.finish()

	for {
		line, err := rl.Readline()
		if err != nil {
			// io.EOF on ^D, readline.ErrInterrupt on ^C
			p.logger.Debug().Err(err).Msg("Prompt closed")
			return
		}

		e, quit, err := parseCommand(line)
		switch {
		case quit:
			return
		case err != nil:
			fmt.Fprintf(p.out, "%v\n%s\n", err, usage)
		default:
			h(e)
		}
	}
}

// parseCommand maps a prompt line to an event. Empty lines toggle.
func parseCommand(line string) (media.Event, bool, error) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "t", "toggle":
		return media.EventToggle, false, nil
	case "n":
		return media.EventNext, false, nil
	case "p":
		return media.EventPrevious, false, nil
	case "q", "quit", "exit":
		return 0, true, nil
	}
	e, err := media.ParseEvent(line)
	return e, false, err
}

// SetPlayback shows the status in the prompt
func (p *Prompt) SetPlayback(status media.PlaybackStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.rl == nil {
		return media.ErrNoSession
	}
	p.status = status
	p.refresh()
	return nil
}

// SetMetadata shows the track in the prompt
func (p *Prompt) SetMetadata(md media.Metadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.rl == nil {
		return media.ErrNoSession
	}
	p.md = md
	p.refresh()
	return nil
}

// Must be called with p.mu held
func (p *Prompt) refresh() {
	p.rl.SetPrompt(p.promptText())
	p.rl.Refresh()
}

// Must be called with p.mu held
func (p *Prompt) promptText() string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(p.status.String())
	sb.WriteString("]")
	if p.md.Title != "" {
		sb.WriteString(" ")
		sb.WriteString(p.md.Title)
		if p.md.Artist != "" {
			sb.WriteString(" - ")
			sb.WriteString(p.md.Artist)
		}
	}
	sb.WriteString(" > ")
	return sb.String()
}

// Done is closed when the user quits the prompt
func (p *Prompt) Done() <-chan struct{} {
	return p.done
}

// Close closes the prompt and restores the terminal
func (p *Prompt) Close() error {
	p.mu.Lock()
	rl := p.rl
	p.rl = nil
	p.closed = true
	p.mu.Unlock()

	var err error
	if rl != nil {
		err = rl.Close()
	}
	p.closeOnce.Do(func() { close(p.done) })
	return err
}

func (p *Prompt) finish() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.closeOnce.Do(func() { close(p.done) })
}
