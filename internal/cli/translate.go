package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tingshu-cli/tingshu/internal/fileio"
	"github.com/tingshu-cli/tingshu/internal/llm"
	"github.com/tingshu-cli/tingshu/internal/subtitle"
	"github.com/tingshu-cli/tingshu/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [jsonl_file]",
	Short: "Fill in Chinese translations using AI",
	Long: `Translate the english_text field of each JSONL entry and store the
result in chinese_text. Entries that already have chinese_text are left
alone unless --force is given.

Examples:
  tingshu translate episode.jsonl
  tingshu translate episode.jsonl --provider anthropic --concurrency 5
  tingshu translate episode.jsonl --force -o episode.zh.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use (provider-specific default)")
	translateCmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 50, "Number of entries per API request")
	translateCmd.Flags().
		Bool("force", false, "Retranslate entries that already have chinese_text")
	translateCmd.Flags().
		String("prompt", "", "Extra instructions appended to the translation prompt")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	jsonlPath := args[0]
	ctx := context.Background()

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	force, _ := cmd.Flags().GetBool("force")
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
	model = configString(model, "models.translate")

	files := fileio.NewDiskManager()
	reader := subtitle.NewReader(files, logger)

	logger.Infow("Starting subtitle translation",
		"input", jsonlPath,
		"output", outputPath,
		"provider", providerStr,
		"model", model,
	)

	entries := reader.Read(jsonlPath)
	if len(entries) == 0 {
		return fmt.Errorf("no valid entries in %s", jsonlPath)
	}

	items := collectTranslationItems(entries, force)
	if len(items) == 0 {
		logger.Infow("Nothing to translate", "entries", len(entries))
		return nil
	}

	logger.Infow("Translating entries",
		"total", len(entries),
		"items", len(items),
		"concurrency", concurrency,
	)

	client, err := llm.Factory(ctx, provider, apiKey, model)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	translator := translate.New(client, translate.Options{
		Prompt:    extraPrompt,
		BatchSize: batchSize,
	})

	results, err := translator.TranslateWithConcurrency(ctx, items, concurrency)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	applied := applyTranslations(entries, results)

	writer := subtitle.NewWriter(files, logger)
	if err := writer.Write(entries, outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(entries))
	fmt.Printf("  Translated: %d\n", applied)

	return nil
}

// collectTranslationItems selects entries needing a translation. Item
// indices are positions in the entries slice.
func collectTranslationItems(entries []*subtitle.Entry, force bool) []translate.Item {
	var items []translate.Item
	for i, entry := range entries {
		text, ok := entry.GetString(subtitle.KeyEnglishText)
		if !ok || text == "" {
			continue
		}
		if !force {
			if existing, ok := entry.GetString(subtitle.KeyChineseText); ok &&
				existing != "" {
				continue
			}
		}
		items = append(items, translate.Item{Index: i, Text: text})
	}
	return items
}

// applyTranslations stores results back into chinese_text, skipping
// out-of-range indices. Returns the number applied.
func applyTranslations(entries []*subtitle.Entry, results []translate.Result) int {
	applied := 0
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(entries) {
			logger.Warnw("Skipping invalid result index",
				"index", result.Index,
				"max", len(entries)-1,
			)
			continue
		}
		if err := entries[result.Index].Set(
			subtitle.KeyChineseText,
			result.Text,
		); err != nil {
			logger.Warnw("Failed to set translation",
				"index", result.Index,
				"error", err,
			)
			continue
		}
		applied++
	}
	return applied
}
