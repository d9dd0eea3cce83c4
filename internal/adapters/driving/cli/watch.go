package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driving"
)

var (
	watchModel  modelFlags
	watchExport exportFlags
	watchSplit  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Analyse documents as they appear in a directory",
	Long: `Watches a directory and analyses every PDF or DOCX file that is created
or changed. Reports written by reqscan are ignored, and a file whose content
was already analysed is not sent again. At most watch.max_per_minute files
are analysed per minute. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addModelFlags(watchCmd, &watchModel)
	addExportFlags(watchCmd, &watchExport)
	watchCmd.Flags().BoolVar(&watchSplit, "split", false, "analyse all text in several requests instead of truncating")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	if err := watchModel.apply(&settings.LLM); err != nil {
		return err
	}
	analyzeOpts, err := watchExport.options()
	if err != nil {
		return err
	}
	if watchSplit {
		analyzeOpts.Overflow = domain.OverflowSplit
	}
	analyzeOpts.Progress = logProgress

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	analysis, release, err := pipeline.Analysis(ctx, *settings)
	if err != nil {
		return err
	}
	defer release()

	watcher := pipeline.Watch(analysis, *settings)
	cmd.Printf("Watching %s for PDF and DOCX files. Press Ctrl+C to stop.\n", dir)

	err = watcher.Watch(ctx, dir, driving.WatchOptions{
		Analyze: analyzeOpts,
		OnResult: func(path string, result *domain.AnalysisResult, err error) {
			printWatchResult(cmd, path, result, err)
		},
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Stopped.")
	return nil
}

func printWatchResult(cmd *cobra.Command, path string, result *domain.AnalysisResult, err error) {
	name := filepath.Base(path)
	if err != nil {
		cmd.Printf("✗ %s: %v\n", name, err)
		return
	}
	reports := make([]string, 0, len(result.Reports))
	for _, r := range result.Reports {
		reports = append(reports, filepath.Base(r.Path))
	}
	line := fmt.Sprintf("✓ %s: %d requirements", name, result.Requirements.Total())
	if len(reports) > 0 {
		line += " -> " + strings.Join(reports, ", ")
	}
	cmd.Println(line)
}
