package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractRaw bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the text that would be sent to the model",
	Long: `Reads and cleans a document without contacting the model.
Use --raw to print the extracted pages before cleaning.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractRaw, "raw", false, "print the unprocessed pages")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	settings, err := currentSettings()
	if err != nil {
		return err
	}
	analysis, err := pipeline.Offline(*settings)
	if err != nil {
		return err
	}

	cleaned, extracted, err := analysis.Extract(commandContext(cmd), args[0])
	if extractRaw && extracted != nil {
		for i, page := range extracted.Pages {
			cmd.Printf("--- Page %d ---\n%s\n", i+1, page)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	cmd.Println(cleaned.String())
	return nil
}
