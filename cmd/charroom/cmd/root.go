package cmd

import (
	"context"
	"os"

	"github.com/nfrund/charroom/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "charroom",
	Short: "Character chat relay",
	Long: `charroom runs the character chat relay and its maintenance tasks.

Available commands:
  serve        Start the HTTP and WebSocket server
  characters   Manage character definitions
  events       List WebSocket events and bus topics
  version      Print the version

Use "charroom [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.New()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
