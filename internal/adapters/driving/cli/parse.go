package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	parseSource string
	parseExport exportFlags
	parsePrint  bool
	parseJSON   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <response.md>",
	Short: "Turn a saved model answer into reports",
	Long: `Parses a model answer saved as Markdown and writes the reports as if
the document given by --source had just been analysed. The source file is
only used to name and place the reports.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseSource, "source", "", "document the answer belongs to (required)")
	addExportFlags(parseCmd, &parseExport)
	parseCmd.Flags().BoolVar(&parseExport.noExport, "no-export", false, "do not write report files")
	parseCmd.Flags().BoolVar(&parsePrint, "print", false, "print the requirements as Markdown")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the result as JSON")
	_ = parseCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	response, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	opts, err := parseExport.options()
	if err != nil {
		return err
	}
	analysis, err := pipeline.Offline(*settings)
	if err != nil {
		return err
	}

	result, err := analysis.ParseAndExport(commandContext(cmd), string(response), parseSource, opts)
	if result != nil {
		if parseJSON {
			if jsonErr := printJSON(cmd, result); jsonErr != nil {
				return jsonErr
			}
		} else {
			printResult(cmd, result, parsePrint)
		}
	}
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	return nil
}
