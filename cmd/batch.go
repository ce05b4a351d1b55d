package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/batch"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/config"
)

var (
	batchOutputDir  string
	batchReportPath string
	batchJobs       int
)

var batchCmd = &cobra.Command{
	Use:   "batch sourceFile...",
	Short: "Assemble many source files concurrently",
	Long: `Batch assembles every file named on the command line, writing a .s file of
directives for each one that succeeds. Defaults come from the "batch" section
of the config file and can be overridden with flags.`,

	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bc := config.GetConfig().Batch
		if cmd.Flags().Changed("out-dir") {
			bc.OutputDir = batchOutputDir
		}
		if cmd.Flags().Changed("report") {
			bc.ReportPath = batchReportPath
		}
		if cmd.Flags().Changed("jobs") {
			bc.Concurrency = batchJobs
		}

		report, err := batch.Run(cmd.Context(), args, bc)
		if err != nil {
			return err
		}

		w := cmd.ErrOrStderr()
		color := colorEnabled(w)
		for _, file := range report.Files {
			for _, line := range file.Errors {
				if color {
					fmt.Fprintf(w, "\x1b[31m%s\x1b[0m\n", line)
				} else {
					fmt.Fprintln(w, line)
				}
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d assembled, %d failed\n", report.Succeeded, report.Failed)

		if report.Failed > 0 {
			return errAssemblyFailed
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOutputDir, "out-dir", "", "directory for the generated .s files")
	batchCmd.Flags().StringVar(&batchReportPath, "report", "", "write a JSON report to this file")
	batchCmd.Flags().IntVarP(&batchJobs, "jobs", "j", 0, "files to assemble at once (0 for unbounded)")
	rootCmd.AddCommand(batchCmd)
}
