// Package player runs the media control loop: it drains control events,
// folds them into the playback state and reflects changes back out.
package player

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/events"
	"github.com/jfmyers9/mediakeys/internal/media"
)

// DefaultTickInterval is the pause between drain and reflect when none is configured
const DefaultTickInterval = 50 * time.Millisecond

// Config holds player configuration
type Config struct {
	Backend         string           // Backend name, used in errors and logs
	ChannelCapacity int              // Event channel capacity
	TickInterval    time.Duration    // Pause between drain and reflect (default: 50ms)
	ChangePolicy    ChangePolicy     // When applied events count as a change
	PushPolicy      PushPolicy       // What to do when the backend rejects an update
	Metadata        media.Metadata   // Metadata published at startup
	Playlist        []media.Metadata // Optional tracks selected by the cursor
	Diagnostics     io.Writer        // Status line output (default: stderr)
}

// Option configures optional player collaborators
type Option func(*Player)

// WithObserver registers a channel that receives reflected snapshots
func WithObserver(ch chan<- media.Snapshot) Option {
	return func(p *Player) {
		p.reflector.AddObserver(ch)
	}
}

type library struct {
	metadata media.Metadata
	playlist []media.Metadata
}

// Player coordinates the event channel, the state machine and the reflect step
type Player struct {
	config    Config
	controls  media.Controls
	events    *events.Channel
	state     State
	reflector *Reflector
	libraries chan library
	logger    zerolog.Logger
}

// New creates a new Player driving the given controls
func New(cfg Config, controls media.Controls, logger zerolog.Logger, opts ...Option) *Player {
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = os.Stderr
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.ChangePolicy == "" {
		cfg.ChangePolicy = ChangeAny
	}
	if cfg.PushPolicy == "" {
		cfg.PushPolicy = PushLog
	}

	logger = logger.With().Str("component", "player").Logger()
	reflector := NewReflector(controls, cfg.Diagnostics, cfg.PushPolicy, logger)
	reflector.SetLibrary(cfg.Metadata, cfg.Playlist)

	p := &Player{
		config:    cfg,
		controls:  controls,
		events:    events.New(cfg.ChannelCapacity),
		state:     InitialState(),
		reflector: reflector,
		libraries: make(chan library, 1),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle queues a control event. It is the handler attached to the
// backend and never blocks; overflowing events are dropped.
func (p *Player) Handle(e media.Event) {
	if err := p.events.Send(e); err != nil {
		p.logger.Warn().
			Err(err).
			Str("event", e.String()).
			Msg("Dropped control event")
	}
}

// UpdateLibrary replaces the published metadata and playlist. It is safe to
// call from any goroutine; the change is pushed on the next tick.
func (p *Player) UpdateLibrary(md media.Metadata, playlist []media.Metadata) {
	lib := library{metadata: md, playlist: playlist}
	for {
		select {
		case p.libraries <- lib:
			return
		default:
		}
		// Drop the stale pending update so the latest one wins
		select {
		case <-p.libraries:
		default:
		}
	}
}

// Run attaches to the controls and loops until ctx is cancelled, a
// shutdown signal arrives or the backend session is closed.
func (p *Player) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		p.logger.Info().Msg("Shutdown signal received, stopping")
		cancel()

		select {
		case <-sigChan:
			p.logger.Warn().Msg("Second shutdown signal received, forcing exit")
			os.Exit(1)
		case <-time.After(10 * time.Second):
		}
	}()

	return p.run(ctx)
}

// run is the main loop
func (p *Player) run(ctx context.Context) error {
	if err := p.controls.Attach(p.Handle); err != nil {
		var regErr *media.RegistrationError
		if !errors.As(err, &regErr) {
			err = &media.RegistrationError{Backend: p.config.Backend, Err: err}
		}
		return err
	}
	defer p.shutdown()

	if err := p.reflector.Start(p.state); err != nil {
		return err
	}

	var closed <-chan struct{}
	if c, ok := p.controls.(media.Closer); ok {
		closed = c.Done()
	}

	p.logger.Info().
		Str("backend", p.config.Backend).
		Dur("tick", p.config.TickInterval).
		Msg("Player started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			p.logger.Info().Msg("Media session closed")
			return nil
		default:
		}

		if err := p.tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// tick drains pending events, waits one interval and reflects the result
func (p *Player) tick(ctx context.Context) error {
	changed := p.state.Fold(p.events.Drain(), p.config.ChangePolicy)

	if err := p.sleep(ctx); err != nil {
		return err
	}

	select {
	case lib := <-p.libraries:
		p.reflector.SetLibrary(lib.metadata, lib.playlist)
		if err := p.reflector.Refresh(p.state); err != nil {
			return err
		}
	default:
	}

	return p.reflector.Reflect(p.state, changed)
}

func (p *Player) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.config.TickInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// shutdown stops accepting events and releases the controls
func (p *Player) shutdown() {
	p.events.Close()
	if err := p.controls.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to close media controls")
	}
	p.logger.Info().Msg("Player stopped")
}
