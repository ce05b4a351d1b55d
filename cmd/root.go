package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/assembler"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/config"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/util"
)

// errAssemblyFailed is returned after the per-line errors have already been printed.
var errAssemblyFailed = errors.New("assembly failed")

var configPath string

var rootCmd = &cobra.Command{
	Use:   "z80hexer",
	Short: "A two-pass Z80 assembler that emits dc directives",
	Long: `z80hexer assembles Z80 source into "dc" byte directives, one line per
instruction, ready to be included by another assembler.

It also runs as a language server for editors, as a batch builder for many
files at once, and as a small browser playground.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog's flags were filled in through cobra, mark them parsed
		flag.CommandLine.Parse(nil)

		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", configPath, err)
		}
		config.Use(c)
		util.LogEndpoint = c.LogEndpoint
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errAssemblyFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path of the JSON config file")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printFailures writes one "file:line: message" line per error.
func printFailures(w io.Writer, file string, errs []*assembler.AssemblyError) {
	color := colorEnabled(w)
	for _, err := range errs {
		if color {
			fmt.Fprintf(w, "\x1b[1m%s:%d:\x1b[0m \x1b[31m%s\x1b[0m\n", file, err.Line, err.Message)
		} else {
			fmt.Fprintf(w, "%s:%d: %s\n", file, err.Line, err.Message)
		}
	}
}
