package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/mediakeys/internal/config"
	"github.com/jfmyers9/mediakeys/internal/discord"
	"github.com/jfmyers9/mediakeys/internal/journal"
	"github.com/jfmyers9/mediakeys/internal/media"
	"github.com/jfmyers9/mediakeys/internal/platform"
	"github.com/jfmyers9/mediakeys/internal/player"
)

const journalFile = "journal.db"

var (
	runBackend  string
	runLogFile  string
	runLogLevel string
	runDataDir  string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the media session",
	Long: `Register a media session and run the control loop.

The session will:
- Attach to the media control backend (ipc, terminal or window)
- Queue play, pause, toggle, next and previous events as they arrive
- Every tick, fold queued events into the playback state
- Publish changed state back to the backend, Discord and the journal
- Stop when the backend session closes or on SIGINT/SIGTERM

The session runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file.`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Command-line flags
	runCmd.Flags().StringVar(&runBackend, "backend", "", "Media control backend: auto, ipc, terminal or window (overrides config)")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Log file path (default: stderr)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Data directory for the journal (default: ~/.local/share/mediakeys)")
}

func runSession(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if runBackend != "" {
		cfg.Backend = runBackend
	}

	backend, err := platform.Resolve(cfg.Backend)
	if err != nil {
		return err
	}
	changePolicy, err := player.ParseChangePolicy(cfg.ChangePolicy)
	if err != nil {
		return err
	}
	pushPolicy, err := player.ParsePushPolicy(cfg.PushErrors)
	if err != nil {
		return err
	}

	// Determine data directory
	dataDir, err := resolveDataDir(runDataDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// The window owns the terminal, so logs and status lines go to a file
	logFile := runLogFile
	if logFile == "" && backend == platform.BackendWindow {
		logFile = filepath.Join(dataDir, "mediakeys.log")
	}

	// Set up logging
	logger, output := setupLogger(logFile, runLogLevel)

	logger.Info().
		Str("version", version).
		Str("backend", backend).
		Str("platform", platform.Tag()).
		Msg("Starting mediakeys session")

	controls, backend, err := platform.New(platform.Options{
		Backend:     backend,
		Name:        cfg.Name,
		DisplayName: cfg.DisplayName,
		SocketPath:  socketPath(cfg),
	}, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	var opts []player.Option

	// Backends that render snapshots, such as the window, see the song cursor
	if obs, ok := controls.(media.Observer); ok {
		snapshots := make(chan media.Snapshot, 16)
		opts = append(opts, player.WithObserver(snapshots))
		wg.Add(1)
		go func() {
			defer wg.Done()
			obs.Observe(ctx, snapshots)
		}()
	}

	if cfg.Discord.Enabled {
		if cfg.Discord.AppID == "" {
			logger.Warn().Msg("Discord enabled without discord.app_id, skipping presence")
		} else {
			snapshots := make(chan media.Snapshot, 16)
			opts = append(opts, player.WithObserver(snapshots))
			presence := discord.New(cfg.Discord.AppID, cfg.DisplayName, logger)
			wg.Add(1)
			go func() {
				defer wg.Done()
				presence.Run(ctx, snapshots)
			}()
		}
	}

	if cfg.Journal.Enabled {
		j, err := openJournal(ctx, filepath.Join(dataDir, journalFile), cfg.Journal.Retention, logger)
		if err != nil {
			return err
		}
		defer j.Close()

		snapshots := make(chan media.Snapshot, 64)
		opts = append(opts, player.WithObserver(snapshots))
		recorder := journal.NewRecorder(j, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			recorder.Run(ctx, snapshots)
		}()
	}

	p := player.New(player.Config{
		Backend:         backend,
		ChannelCapacity: cfg.ChannelCapacity,
		TickInterval:    cfg.TickInterval,
		ChangePolicy:    changePolicy,
		PushPolicy:      pushPolicy,
		Metadata:        cfg.Metadata,
		Playlist:        cfg.Playlist,
		Diagnostics:     output,
	}, controls, logger, opts...)

	watching := config.Watch(func(c *config.Config, err error) {
		if err != nil {
			logger.Warn().Err(err).Msg("Ignoring invalid config change")
			return
		}
		logger.Info().Msg("Config changed, updating metadata")
		p.UpdateLibrary(c.Metadata, c.Playlist)
	})
	if watching {
		logger.Debug().Msg("Watching config file for changes")
	}

	// Run the loop (blocks until shutdown)
	runErr := p.Run(ctx)

	cancel()
	wg.Wait()

	if runErr != nil {
		logger.Error().Err(runErr).Msg("Session failed")
		return runErr
	}

	logger.Info().Msg("Session stopped")
	return nil
}

// openJournal opens the journal and prunes entries past retention
func openJournal(ctx context.Context, path string, retention time.Duration, logger zerolog.Logger) (*journal.Journal, error) {
	j, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if retention > 0 {
		deleted, err := j.Cleanup(ctx, retention)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to prune journal")
		} else if deleted > 0 {
			logger.Info().Int64("deleted", deleted).Msg("Pruned old journal entries")
		}
	}

	return j, nil
}

// setupLogger creates a logger with the specified configuration. It also
// returns the writer used for status lines.
func setupLogger(logFile, logLevel string) (zerolog.Logger, io.Writer) {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger, output
}
