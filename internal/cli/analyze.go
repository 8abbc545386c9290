package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tingshu-cli/tingshu/internal/analyze"
	"github.com/tingshu-cli/tingshu/internal/fileio"
	"github.com/tingshu-cli/tingshu/internal/llm"
	"github.com/tingshu-cli/tingshu/internal/subtitle"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [jsonl_file]",
	Short: "Annotate entries with learner notes using AI",
	Long: `Add a short vocabulary/grammar note to each JSONL entry and mark it
with has_analysis. Entries already marked are skipped unless --force is
given.

Examples:
  tingshu analyze episode.jsonl
  tingshu analyze episode.jsonl --provider anthropic
  tingshu analyze episode.jsonl --force -o episode.notes.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().
		String("provider", "anthropic", "Analysis provider (gemini, openai, anthropic)")
	analyzeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().
		String("model", "", "Model to use (provider-specific default)")
	analyzeCmd.Flags().
		Int("concurrency", 3, "Number of parallel analysis workers")
	analyzeCmd.Flags().
		Int("batch-size", 20, "Number of entries per API request")
	analyzeCmd.Flags().
		Bool("force", false, "Reanalyze entries already marked with has_analysis")
	analyzeCmd.Flags().
		String("language", "Chinese", "Language of the learner notes")
	analyzeCmd.Flags().
		String("prompt", "", "Extra instructions appended to the analysis prompt")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	jsonlPath := args[0]
	ctx := context.Background()

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	force, _ := cmd.Flags().GetBool("force")
	language, _ := cmd.Flags().GetString("language")
	extraPrompt, _ := cmd.Flags().GetString("prompt")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(jsonlPath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", jsonlPath)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}
	if outputPath == "" {
		outputPath = jsonlPath
	}

	provider := llm.Provider(providerStr)
	apiKey = resolveAPIKey(provider, apiKey)
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s",
			provider.EnvVar(),
		)
	}
	model = configString(model, "models.analyze")

	files := fileio.NewDiskManager()
	reader := subtitle.NewReader(files, logger)

	logger.Infow("Starting subtitle analysis",
		"input", jsonlPath,
		"output", outputPath,
		"provider", providerStr,
		"model", model,
	)

	entries := reader.Read(jsonlPath)
	if len(entries) == 0 {
		return fmt.Errorf("no valid entries in %s", jsonlPath)
	}

	items := collectAnalysisItems(entries, force)
	if len(items) == 0 {
		logger.Infow("Nothing to analyze", "entries", len(entries))
		return nil
	}

	logger.Infow("Analyzing entries",
		"total", len(entries),
		"items", len(items),
		"concurrency", concurrency,
	)

	client, err := llm.Factory(ctx, provider, apiKey, model)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	analyzer := analyze.New(client, analyze.Options{
		Language:  language,
		Prompt:    extraPrompt,
		BatchSize: batchSize,
	})

	results, err := analyzer.AnalyzeWithConcurrency(ctx, items, concurrency)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	applied := applyAnalyses(entries, results)

	writer := subtitle.NewWriter(files, logger)
	if err := writer.Write(entries, outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles analyzed successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(entries))
	fmt.Printf("  Annotated: %d\n", applied)

	return nil
}

// collectAnalysisItems selects entries needing a note. Item indices are
// positions in the entries slice.
func collectAnalysisItems(entries []*subtitle.Entry, force bool) []analyze.Item {
	var items []analyze.Item
	for i, entry := range entries {
		text, ok := entry.GetString(subtitle.KeyEnglishText)
		if !ok || text == "" {
			continue
		}
		if !force {
			if done, ok := entry.GetBool(subtitle.KeyHasAnalysis); ok && done {
				continue
			}
		}
		items = append(items, analyze.Item{Index: i, Text: text})
	}
	return items
}

// applyAnalyses stores notes into analysis and flips has_analysis.
func applyAnalyses(entries []*subtitle.Entry, results []analyze.Result) int {
	applied := 0
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(entries) {
			logger.Warnw("Skipping invalid result index",
				"index", result.Index,
				"max", len(entries)-1,
			)
			continue
		}
		entry := entries[result.Index]
		if err := entry.Set(subtitle.KeyAnalysis, result.Analysis); err != nil {
			logger.Warnw("Failed to set analysis",
				"index", result.Index,
				"error", err,
			)
			continue
		}
		if err := entry.Set(subtitle.KeyHasAnalysis, true); err != nil {
			logger.Warnw("Failed to mark analysis",
				"index", result.Index,
				"error", err,
			)
			continue
		}
		applied++
	}
	return applied
}
