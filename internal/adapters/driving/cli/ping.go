package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingModel modelFlags

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the model server is reachable",
	Long: `Contacts the configured model server and checks that the model is
available. Ollama additionally reports models that have not been pulled.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	addModelFlags(pingCmd, &pingModel)
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, _ []string) error {
	settings, err := currentSettings()
	if err != nil {
		return err
	}
	if err := pingModel.apply(&settings.LLM); err != nil {
		return err
	}

	llm := settings.LLM
	target := llm.Provider.Description()
	if llm.BaseURL != "" {
		target += " at " + llm.BaseURL
	}
	cmd.Printf("Checking %s (%s)... ", target, llm.Model)

	if err := pipeline.Ping(commandContext(cmd), &llm); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("ping failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}
