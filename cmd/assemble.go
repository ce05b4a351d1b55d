package cmd

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/assembler"
)

var (
	outputPath  string
	binaryPath  string
	showListing bool
	showSymbols bool
)

// assembleCmd represents the assemble command
var assembleCmd = &cobra.Command{
	Use:   "assemble sourceFile",
	Short: "Assemble one Z80 source file",
	Long: `Assemble reads one Z80 source file and prints its "dc" directives to
stdout, or writes them to the file named by --output.

When the source has errors every one of them is printed as file:line: message
and nothing is written.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		res := assembler.Assemble(string(b))
		if res.Failed() {
			printFailures(cmd.ErrOrStderr(), args[0], res.Errors)
			return errAssemblyFailed
		}

		out := cmd.OutOrStdout()
		if outputPath != "" {
			if err := os.WriteFile(outputPath, []byte(res.Directives()), 0644); err != nil {
				return err
			}
		} else {
			fmt.Fprint(out, res.Directives())
		}

		if binaryPath != "" {
			if err := os.WriteFile(binaryPath, res.Bytes(), 0644); err != nil {
				return err
			}
		}

		if showListing {
			for _, line := range res.Listing() {
				fmt.Fprintln(out, line)
			}
		}

		if showSymbols {
			printer := pp.New()
			printer.SetOutput(cmd.ErrOrStderr())
			printer.SetColoringEnabled(colorEnabled(cmd.ErrOrStderr()))
			printer.Println(assembler.SortedSymbols(res.Labels))
		}
		return nil
	},
}

func init() {
	assembleCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the directives to this file instead of stdout")
	assembleCmd.Flags().StringVar(&binaryPath, "binary", "", "also write the raw program image to this file")
	assembleCmd.Flags().BoolVar(&showListing, "listing", false, "print an address/bytes/source listing")
	assembleCmd.Flags().BoolVar(&showSymbols, "symbols", false, "dump the symbol table to stderr")
	rootCmd.AddCommand(assembleCmd)
}
