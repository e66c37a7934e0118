// Package discord mirrors the reflected playback state to Discord Rich
// Presence over Discord's local IPC socket.
package discord

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
)

type rpcClient interface {
	SetActivity(Activity) error
	Close() error
}

// Presence manages Discord Rich Presence updates.
type Presence struct {
	appID   string
	name    string
	logger  zerolog.Logger
	client  rpcClient
	connect func(string) (rpcClient, error)
	last    lastActivity
	artwork *artworkLookup
}

type lastActivity struct {
	title, artist, album string
	cursor               uint8
	playing              bool
}

// New creates a Presence that shows activities under the given name
func New(appID, name string, logger zerolog.Logger) *Presence {
	logger = logger.With().Str("component", "discord").Logger()
	return &Presence{
		appID:  appID,
		name:   name,
		logger: logger,
		connect: func(appID string) (rpcClient, error) {
			return ipcConnect(appID)
		},
		artwork: newArtworkLookup(logger),
	}
}

// Run consumes snapshots and sets Discord Rich Presence.
// Connects lazily on the first playing snapshot. If Discord isn't
// running, logs the error and retries on the next snapshot.
func (p *Presence) Run(ctx context.Context, snapshots <-chan media.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			p.close()
			return
		case snap, ok := <-snapshots:
			if !ok {
				p.close()
				return
			}
			p.handleSnapshot(snap)
		}
	}
}

func (p *Presence) handleSnapshot(snap media.Snapshot) {
	if snap.Status != media.StatusPlaying || snap.Metadata.IsZero() {
		if p.last.playing {
			p.clearActivity()
			p.last = lastActivity{}
		}
		return
	}

	md := snap.Metadata
	cur := lastActivity{
		title: md.Title, artist: md.Artist, album: md.Album,
		cursor: snap.Cursor, playing: true,
	}
	if cur == p.last {
		return
	}

	if err := p.ensureConnected(); err != nil {
		p.logger.Warn().Err(err).Msg("Discord not available")
		return
	}

	at := snap.At
	if at.IsZero() {
		at = time.Now()
	}
	startUnix := at.Unix()

	largeImage := md.CoverURL
	if largeImage == "" && p.artwork != nil {
		largeImage = p.artwork.Lookup(md)
	}

	activity := Activity{
		Type:    ActivityListening,
		Name:    p.name,
		Details: md.Title,
		Timestamps: &Timestamps{
			Start: &startUnix,
		},
		Assets: &Assets{
			LargeImage: largeImage,
			LargeText:  md.Album,
		},
	}
	if md.Artist != "" {
		activity.State = "by " + md.Artist
	}

	if err := p.client.SetActivity(activity); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to set activity")
		p.close()
		return
	}
	p.last = cur
}

func (p *Presence) ensureConnected() error {
	if p.client != nil {
		return nil
	}
	client, err := p.connect(p.appID)
	if err != nil {
		return err
	}
	p.logger.Info().Msg("Connected to Discord")
	p.client = client
	return nil
}

func (p *Presence) clearActivity() {
	if p.client == nil {
		return
	}
	if err := p.client.SetActivity(Activity{}); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to clear activity")
		p.close()
	}
}

func (p *Presence) close() {
	if p.client == nil {
		return
	}
	_ = p.client.Close()
	p.client = nil
}
