package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/mediakeys/internal/config"
	"github.com/jfmyers9/mediakeys/internal/media"
	"github.com/jfmyers9/mediakeys/internal/media/ipc"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Resume playback",
	Long:  `Send a play event to the running mediakeys session.`,
	RunE:  runControl(media.EventPlay),
}

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Long:  `Send a pause event to the running mediakeys session.`,
	RunE:  runControl(media.EventPause),
}

// toggleCmd represents the toggle command
var toggleCmd = &cobra.Command{
	Use:     "toggle",
	Aliases: []string{"playpause"},
	Short:   "Toggle play/pause",
	Long:    `Send a toggle event to the running mediakeys session. If playing, pauses. If paused, resumes.`,
	RunE:    runControl(media.EventToggle),
}

// nextCmd represents the next command
var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next song",
	Long:  `Send a next event to the running mediakeys session, advancing the song cursor.`,
	RunE:  runControl(media.EventNext),
}

// prevCmd represents the prev command
var prevCmd = &cobra.Command{
	Use:     "prev",
	Aliases: []string{"previous"},
	Short:   "Go to the previous song",
	Long:    `Send a previous event to the running mediakeys session, moving the song cursor back.`,
	RunE:    runControl(media.EventPrevious),
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
}

func runControl(e media.Event) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := dispatch(ctx, socketPath(cfg), e); err != nil {
			return fmt.Errorf("failed to send %s: %w", e, err)
		}
		return nil
	}
}

// dispatch sends one event to the session listening on path
func dispatch(ctx context.Context, path string, e media.Event) error {
	client, err := ipc.Dial(ctx, path)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.Dispatch(e)
}
