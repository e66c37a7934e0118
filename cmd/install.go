package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/mediakeys/internal/service"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the mediakeys session as a login agent",
	Long: `Install 'mediakeys run --backend ipc' as a per-user agent that starts on login.

This command will:
  - Generate a launchd plist (macOS) or a systemd user unit (Linux)
  - Install it to ~/Library/LaunchAgents/ or ~/.config/systemd/user/
  - Load and start the agent

Media keys bound in a hotkey daemon can then run 'mediakeys toggle',
'mediakeys next' and friends against the background session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := service.Current()
		if err != nil {
			return err
		}

		// Get the path to the current executable
		binaryPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		// Resolve symlinks to get the actual binary path
		binaryPath, err = filepath.EvalSymlinks(binaryPath)
		if err != nil {
			return fmt.Errorf("failed to resolve executable path: %w", err)
		}

		logPath, err := service.GetDefaultLogPath()
		if err != nil {
			return fmt.Errorf("failed to get log path: %w", err)
		}
		if err := os.MkdirAll(logPath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		runArgs := []string{"run", "--backend", "ipc"}
		if socketFlag != "" {
			runArgs = append(runArgs, "--socket", socketFlag)
		}

		definition, err := service.Generate(manager, service.Config{
			BinaryPath:       binaryPath,
			Args:             runArgs,
			LogPath:          logPath,
			WorkingDirectory: home,
		})
		if err != nil {
			return fmt.Errorf("failed to generate %s definition: %w", manager, err)
		}

		path, err := service.Path(manager)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Println("Agent is already installed. Reinstalling...")
			if err := service.Unload(manager); err != nil {
				fmt.Printf("Warning: failed to unload existing agent: %v\n", err)
			}
		}

		if err := os.WriteFile(path, []byte(definition), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("✓ Installed %s agent to %s\n", manager, path)

		if err := service.Load(manager, path); err != nil {
			return fmt.Errorf("failed to load agent: %w", err)
		}

		fmt.Println("✓ Agent loaded and started")
		fmt.Println("\nThe mediakeys session now starts automatically on login.")
		fmt.Println("\nTo uninstall, run:")
		fmt.Println("  mediakeys uninstall")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
