package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
)

// Recorder writes reflected snapshots to a journal under one session id
type Recorder struct {
	journal *Journal
	session string
	logger  zerolog.Logger
}

// NewRecorder creates a Recorder with a fresh session id
func NewRecorder(j *Journal, logger zerolog.Logger) *Recorder {
	session := uuid.NewString()
	return &Recorder{
		journal: j,
		session: session,
		logger:  logger.With().Str("component", "journal").Str("session", session).Logger(),
	}
}

// Session returns the session id entries are recorded under
func (r *Recorder) Session() string {
	return r.session
}

// Run records snapshots until ctx is cancelled or snapshots is closed
func (r *Recorder) Run(ctx context.Context, snapshots <-chan media.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			r.record(snap)
		}
	}
}

func (r *Recorder) record(snap media.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	at := snap.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := r.journal.Record(ctx, Entry{
		Session:  r.session,
		Status:   snap.Status,
		Cursor:   snap.Cursor,
		Metadata: snap.Metadata,
		At:       at,
	})
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to record snapshot")
	}
}
