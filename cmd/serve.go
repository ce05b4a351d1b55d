package cmd

import (
	"github.com/spf13/cobra"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/config"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/playground"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser playground",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := config.GetConfig().PlaygroundAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		return playground.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides the config file")
	rootCmd.AddCommand(serveCmd)
}
