package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/mediakeys/internal/config"
	"github.com/jfmyers9/mediakeys/internal/journal"
)

var (
	historyLimit   int
	historyDataDir string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently reflected playback states",
	Long: `List the playback states the session published, newest first.

Entries are read from the journal written by 'mediakeys run'
(~/.local/share/mediakeys/journal.db by default).`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0=all)")
	historyCmd.Flags().StringVar(&historyDataDir, "data-dir", "", "Data directory holding the journal (default: ~/.local/share/mediakeys)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dataDir, err := resolveDataDir(historyDataDir)
	if err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, journalFile)
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no journal at %s: run 'mediakeys run' first", dbPath)
	}

	j, err := journal.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	entries, err := j.Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	printHistory(cmd.OutOrStdout(), entries)
	return nil
}

// printHistory writes one aligned line per entry
func printHistory(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries")
		return
	}

	for _, e := range entries {
		song := e.Metadata.Title
		if e.Metadata.Artist != "" {
			song = e.Metadata.Artist + " - " + song
		}
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			e.At.Local().Format("2006-01-02 15:04:05"),
			padToWidth(e.Status.String(), 7),
			padToWidth(fmt.Sprintf("#%d", e.Cursor), 4),
			padToWidth(song, 40),
			shortSession(e.Session),
		)
	}
}

// shortSession trims a session id to its first group
func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveDataDir returns dir or the default data directory
func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return config.GetDataDir()
}
