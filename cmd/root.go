/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/mediakeys/internal/config"
	"github.com/jfmyers9/mediakeys/internal/platform"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// socketFlag overrides the session socket path for every command
var socketFlag string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediakeys",
	Short: "Media key session for the desktop",
	Long: `mediakeys registers a media session with the operating system's
media controls and keeps it in sync with a small playback state.

Media keys, hotkey daemons and the mediakeys CLI send play, pause,
toggle, next and previous events. The session folds them into its state
and publishes the result back to the OS, Discord and a local journal.

Use 'mediakeys run' to start the session.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketFlag, "socket", "", "Session socket path (default: per-OS runtime directory)")
}

// socketPath resolves the session socket from the flag, config and platform default
func socketPath(cfg *config.Config) string {
	if socketFlag != "" {
		return socketFlag
	}
	if cfg.SocketPath != "" {
		return cfg.SocketPath
	}
	return platform.DefaultSocketPath(cfg.Name)
}
