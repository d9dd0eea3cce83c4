package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/reqscan/internal/adapters/driving/tui"
	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/logger"
	"github.com/custodia-labs/reqscan/internal/requirements"
)

// modelFlags override the configured model server for one run.
type modelFlags struct {
	provider string
	model    string
	baseURL  string
}

// exportFlags override where and how reports are written.
type exportFlags struct {
	outputDir string
	formats   []string
	noExport  bool
}

var (
	analyzeModel  modelFlags
	analyzeExport exportFlags
	analyzePrint  bool
	analyzeJSON   bool
	analyzeSplit  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyse a PDF or DOCX specification",
	Long: `Reads the document, removes page furniture, asks the model for the
requirements it contains and writes PDF and DOCX reports next to the input
(named <input>_Report.pdf and <input>_Report.docx).

Text longer than analysis.max_input_chars is truncated unless --split is
given, in which case every part is analysed and the results are merged.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	addModelFlags(analyzeCmd, &analyzeModel)
	addExportFlags(analyzeCmd, &analyzeExport)
	analyzeCmd.Flags().BoolVar(&analyzeExport.noExport, "no-export", false, "do not write report files")
	analyzeCmd.Flags().BoolVar(&analyzePrint, "print", false, "print the requirements as Markdown")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeSplit, "split", false, "analyse all text in several requests instead of truncating")
	rootCmd.AddCommand(analyzeCmd)
}

func addModelFlags(cmd *cobra.Command, f *modelFlags) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "model provider (ollama, openai, gemini)")
	cmd.Flags().StringVar(&f.model, "model", "", "model name")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "model server URL")
}

func addExportFlags(cmd *cobra.Command, f *exportFlags) {
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "write reports to this directory instead of next to the input")
	cmd.Flags().StringSliceVarP(&f.formats, "format", "f", nil, "report format (pdf, docx); repeatable")
}

// apply overrides the LLM settings with the flags that were set.
func (f modelFlags) apply(settings *domain.LLMSettings) error {
	if f.provider != "" {
		p := domain.AIProvider(strings.ToLower(f.provider))
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, f.provider)
		}
		if p != settings.Provider {
			settings.Provider = p
			settings.Model = domain.DefaultLLMModels()[p]
			settings.BaseURL = ""
		}
	}
	if f.model != "" {
		settings.Model = f.model
	}
	if f.baseURL != "" {
		settings.BaseURL = f.baseURL
	}
	return nil
}

// options converts the export flags into analysis options.
func (f exportFlags) options() (domain.AnalyzeOptions, error) {
	opts := domain.AnalyzeOptions{
		OutputDir: f.outputDir,
		NoExport:  f.noExport,
	}
	formats, err := parseFormats(f.formats)
	if err != nil {
		return opts, err
	}
	opts.Formats = formats
	return opts, nil
}

func parseFormats(values []string) ([]domain.Format, error) {
	var formats []domain.Format
	for _, v := range values {
		f := domain.Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "."))
		if !f.IsValid() {
			return nil, fmt.Errorf("%w: unknown report format %q", domain.ErrInvalidInput, v)
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	if err := analyzeModel.apply(&settings.LLM); err != nil {
		return err
	}
	opts, err := analyzeExport.options()
	if err != nil {
		return err
	}
	if analyzeSplit {
		opts.Overflow = domain.OverflowSplit
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	analysis, release, err := pipeline.Analysis(ctx, *settings)
	if err != nil {
		return err
	}
	defer release()

	run := func(ctx context.Context, report domain.ProgressFunc) (*domain.AnalysisResult, error) {
		opts.Progress = report
		return analysis.Analyze(ctx, path, opts)
	}

	var result *domain.AnalysisResult
	if !analyzeJSON && isTerminal(cmd) {
		result, err = tui.RunWithProgress(ctx, "Analysing "+filepath.Base(path), run)
	} else {
		result, err = run(ctx, logProgress)
	}

	if result != nil {
		if analyzeJSON {
			if jsonErr := printJSON(cmd, result); jsonErr != nil {
				return jsonErr
			}
		} else {
			printResult(cmd, result, analyzePrint)
		}
	}
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", filepath.Base(path), err)
	}
	return nil
}

// logProgress writes stage transitions to the log.
func logProgress(p domain.Progress) {
	if p.Stage == domain.StageDone {
		return
	}
	if p.Detail != "" {
		logger.Info("%s (%s)", p.Stage.Description(), p.Detail)
		return
	}
	logger.Info("%s", p.Stage.Description())
}

// isTerminal reports whether the command writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printResult writes the human-readable summary of a run.
func printResult(cmd *cobra.Command, result *domain.AnalysisResult, markdown bool) {
	set := result.Requirements
	if markdown {
		cmd.Println(renderMarkdown(cmd, requirements.Render(set)))
	}

	cmd.Printf("Found %d functional, %d non-functional requirements and %d risks",
		len(set.Functional), len(set.NonFunctional), len(set.Risks))
	if result.Segments > 1 {
		cmd.Printf(" in %d segments", result.Segments)
	}
	cmd.Println(".")
	if result.Truncated {
		cmd.Println("Note: the document was truncated. Use --split to analyse all of it.")
	}

	if len(result.Reports) == 0 {
		return
	}
	cmd.Println("Reports:")
	for _, r := range result.Reports {
		cmd.Printf("  %-5s %s\n", r.Format, r.Path)
	}
}

// renderMarkdown styles md for the terminal. Pipes and files get it unchanged.
func renderMarkdown(cmd *cobra.Command, md string) string {
	if !isTerminal(cmd) {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		logger.Debug("render markdown: %v", err)
		return md
	}
	return out
}
