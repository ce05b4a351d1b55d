package cmd

import (
	"github.com/spf13/cobra"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/config"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/languageServer"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/util"
)

var languageServerCmd = &cobra.Command{
	Use:   "languageServer [debug|tcp]",
	Short: "Run the language server",
	Long: `Run the language server over stdin and stdout. With "debug" the server also
logs every request; with "tcp" it listens on the configured address instead so
it can be attached to remotely.`,

	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"debug", "tcp"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.GetConfig()
		mode := ""
		if len(args) == 1 {
			mode = args[0]
		}

		switch mode {
		case "tcp":
			util.LoggingEnabled = true
			return languageServer.ListenAndServeTCP(c.LanguageServerAddr, c.LanguageID)
		case "debug":
			util.LoggingEnabled = true
		}
		languageServer.ListenAndServe(c.LanguageID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languageServerCmd)
}
