package cmd

import (
	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := server.New(config.New())
		if err != nil {
			return err
		}
		return s.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
