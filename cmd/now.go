/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/mediakeys/internal/config"
	"github.com/jfmyers9/mediakeys/internal/media"
	"github.com/jfmyers9/mediakeys/internal/media/ipc"
)

// nowCmd represents the now command
var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Display the state published by the running session",
	Long: `Query the running mediakeys session and display the current song.

The output format can be customized in ~/.config/mediakeys/config.yaml
using a Go template. Available fields: .Title, .Artist, .Album, .CoverURL,
.Status, .Name, .Platform

Exit codes:
  0 - Session is playing
  1 - Session is paused or not running`,
	RunE: runNow,
}

// nowData is the template data for the now command
type nowData struct {
	Title    string
	Artist   string
	Album    string
	CoverURL string
	Status   string
	Name     string
	Platform string
}

func init() {
	rootCmd.AddCommand(nowCmd)

	// Add format flag to override config
	nowCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	nowCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
}

func runNow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Check for format flag override
	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag != "" {
		cfg.OutputFormat = formatFlag
	}

	client, err := ipc.Dial(ctx, socketPath(cfg))
	if err != nil {
		// No session, nothing is playing
		os.Exit(1)
		return nil
	}
	defer client.Close()

	state, err := client.State()
	if err != nil {
		return fmt.Errorf("failed to get session state: %w", err)
	}

	// If not playing, exit with code 1
	if !state.Attached || state.Status != media.StatusPlaying {
		client.Close()
		os.Exit(1)
		return nil
	}

	// Format and print output
	output, err := formatState(state, cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Apply width padding if requested
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = cfg.OutputWidth
	}
	output = padToWidth(output, width)

	fmt.Println(output)
	return nil
}

// formatState applies the template to the published state
func formatState(state ipc.State, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	data := nowData{
		Title:    state.Metadata.Title,
		Artist:   state.Metadata.Artist,
		Album:    state.Metadata.Album,
		CoverURL: state.Metadata.CoverURL,
		Status:   state.Status.String(),
		Name:     state.Name,
		Platform: state.Platform,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		result := runewidth.Truncate(text, width-ellipsisWidth, "") + ellipsis

		// Wide runes can leave the truncated text one column short
		if resultWidth := runewidth.StringWidth(result); resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text
}
