package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tingshu-cli/tingshu/internal/audio"
	"github.com/tingshu-cli/tingshu/internal/fileio"
	"github.com/tingshu-cli/tingshu/internal/llm"
	"github.com/tingshu-cli/tingshu/internal/subtitle"
	"github.com/tingshu-cli/tingshu/internal/tts"
)

var generateCmd = &cobra.Command{
	Use:   "generate [jsonl_file]",
	Short: "Generate an audiobook from JSONL subtitle entries",
	Long: `Read each JSONL entry aloud with AI text-to-speech and join the
segments into one audiobook file.

The --text flag picks which field is spoken: english, chinese, or both
(English first, then Chinese, per entry).

Examples:
  tingshu generate episode.jsonl
  tingshu generate episode.jsonl --text chinese --provider gemini
  tingshu generate episode.jsonl --gap 500ms -o episode.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		String("provider", "openai", "TTS provider (openai, gemini)")
	generateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/GEMINI_API_KEY)")
	generateCmd.Flags().
		String("model", "", "TTS model to use (provider-specific default)")
	generateCmd.Flags().
		String("voice", "", "Voice to use (provider-specific default)")
	generateCmd.Flags().
		Float64("speed", 0, "Speech speed multiplier (provider default when 0)")
	generateCmd.Flags().
		String("text", "english", "Which text to read (english, chinese, both)")
	generateCmd.Flags().
		Duration("gap", 300*time.Millisecond, "Silence between entries (0 to disable)")
	generateCmd.Flags().
		Int("concurrency", 3, "Number of parallel synthesis workers")
	generateCmd.Flags().
		Bool("keep-segments", false, "Keep per-entry audio segments next to the output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	jsonlPath := args[0]
	ctx := context.Background()

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	voice, _ := cmd.Flags().GetString("voice")
	speed, _ := cmd.Flags().GetFloat64("speed")
	textMode, _ := cmd.Flags().GetString("text")
	gap, _ := cmd.Flags().GetDuration("gap")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	keepSegments, _ := cmd.Flags().GetBool("keep-segments")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(jsonlPath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", jsonlPath)
	}
	if !isValidTextMode(textMode) {
		return fmt.Errorf(
			"unsupported text mode %q: use english, chinese, or both",
			textMode,
		)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	provider := tts.Provider(providerStr)
	if provider != tts.ProviderOpenAI && provider != tts.ProviderGemini {
		return fmt.Errorf(
			"unsupported TTS provider %q: use openai or gemini",
			providerStr,
		)
	}

	apiKey = resolveAPIKey(llm.Provider(providerStr), apiKey)
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s",
			llm.Provider(providerStr).EnvVar(),
		)
	}
	model = configString(model, "models.tts")
	voice = configString(voice, "tts.voice")

	if outputPath == "" {
		base := strings.TrimSuffix(jsonlPath, filepath.Ext(jsonlPath))
		outputPath = base + ".mp3"
	}
	if !audio.IsAudioFile(outputPath) {
		return fmt.Errorf(
			"unsupported output extension %q",
			filepath.Ext(outputPath),
		)
	}

	files := fileio.NewDiskManager()
	reader := subtitle.NewReader(files, logger)

	logger.Infow("Starting audiobook generation",
		"input", jsonlPath,
		"output", outputPath,
		"provider", providerStr,
		"text", textMode,
		"gap", gap.String(),
	)

	entries := reader.Read(jsonlPath)
	if len(entries) == 0 {
		return fmt.Errorf("no valid entries in %s", jsonlPath)
	}

	synthesizer, err := tts.Factory(ctx, provider, apiKey, tts.Options{
		Model: model,
		Voice: voice,
		Speed: speed,
	})
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "tingshu-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	segmentDir := tempDir
	if keepSegments {
		segmentDir = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) +
			".segments"
		if err := os.MkdirAll(segmentDir, 0755); err != nil {
			return fmt.Errorf("failed to create segment directory: %w", err)
		}
	}

	jobs, segments := buildSpeechJobs(
		entries,
		textMode,
		segmentDir,
		synthesizer.FileExtension(),
	)
	if len(jobs) == 0 {
		return fmt.Errorf("no entries with %s text to read", textMode)
	}

	logger.Infow("Synthesizing speech",
		"entries", len(entries),
		"segments", len(jobs),
		"concurrency", concurrency,
	)

	if err := tts.SynthesizeAll(ctx, synthesizer, jobs, concurrency); err != nil {
		if keepSegments {
			// don't leave partial segments in the durable directory
			if cleanErr := audio.CleanupSegments(segments); cleanErr != nil {
				logger.Warnw("Failed to remove partial segments",
					"error", cleanErr,
				)
			}
		}
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	logger.Infow("Assembling audiobook", "segments", len(segments))

	err = audio.Concat(ctx, segments, outputPath, audio.ConcatOptions{
		Gap:     gap,
		WorkDir: tempDir,
	})
	if err != nil {
		return fmt.Errorf("failed to assemble audiobook: %w", err)
	}

	duration, err := audio.GetDuration(outputPath)
	if err != nil {
		logger.Warnw("Failed to probe output duration", "error", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Audiobook generated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(jobs))
	if duration > 0 {
		fmt.Printf("  Duration: %s\n", duration.String())
	}

	return nil
}

func isValidTextMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "english", "chinese", "both":
		return true
	default:
		return false
	}
}

// selectSpeechText picks the spoken text for one entry according to mode.
func selectSpeechText(entry *subtitle.Entry, mode string) string {
	english, _ := entry.GetString(subtitle.KeyEnglishText)
	chinese, _ := entry.GetString(subtitle.KeyChineseText)

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "chinese":
		return chinese
	case "both":
		if english == "" {
			return chinese
		}
		if chinese == "" {
			return english
		}
		return english + "\n" + chinese
	default:
		return english
	}
}

// buildSpeechJobs creates one synthesis job per entry with text, skipping
// silent entries with a diagnostic. Segment order follows entry order.
func buildSpeechJobs(
	entries []*subtitle.Entry,
	mode string,
	dir string,
	ext string,
) ([]tts.Job, []string) {
	var jobs []tts.Job
	var segments []string
	for i, entry := range entries {
		text := selectSpeechText(entry, mode)
		if strings.TrimSpace(text) == "" {
			logger.Warnw("Skipping entry without text",
				"index", entry.Index(),
			)
			continue
		}
		outPath := filepath.Join(dir, fmt.Sprintf("segment_%05d%s", i, ext))
		jobs = append(jobs, tts.Job{Index: i, Text: text, OutPath: outPath})
		segments = append(segments, outPath)
	}
	return jobs, segments
}
