package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/mediakeys/internal/service"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the mediakeys login agent",
	Long: `Stop the mediakeys login agent and remove its definition.

After uninstalling, the session will no longer start automatically on login.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := service.Current()
		if err != nil {
			return err
		}

		path, err := service.Path(manager)
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Println("Agent is not installed")
			return nil
		}

		fmt.Println("Stopping agent...")
		if err := service.Unload(manager); err != nil {
			fmt.Printf("Warning: failed to unload agent: %v\n", err)
		} else {
			fmt.Println("✓ Agent stopped")
		}

		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}

		fmt.Printf("✓ Removed %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
