package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tingshu-cli/tingshu/internal/fileio"
	"github.com/tingshu-cli/tingshu/internal/subtitle"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Import an SRT subtitle file into JSONL entries",
	Long: `Convert an SRT subtitle file into the JSONL entry format.

Each cue becomes one JSON object per line with index, timestamp (the cue
start in SRT clock format), duration_ms, and english_text fields.

Examples:
  tingshu convert episode.srt
  tingshu convert episode.srt -o episode.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	srtPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(srtPath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", srtPath)
	}

	ext := strings.ToLower(filepath.Ext(srtPath))
	if ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: use .srt", ext)
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(srtPath, filepath.Ext(srtPath)) + ".jsonl"
	}

	files := fileio.NewDiskManager()

	logger.Infow("Converting subtitle file",
		"input", srtPath,
		"output", outputPath,
	)

	text, err := files.ReadTextFile(srtPath)
	if err != nil {
		return fmt.Errorf("failed to read subtitle file: %w", err)
	}

	cues, err := subtitle.ParseSRT(text)
	if err != nil {
		return fmt.Errorf("failed to parse SRT file: %w", err)
	}
	if len(cues) == 0 {
		return fmt.Errorf("subtitle file contains no cues")
	}

	entries, err := subtitle.CuesToEntries(cues)
	if err != nil {
		return fmt.Errorf("failed to convert cues: %w", err)
	}

	writer := subtitle.NewWriter(files, logger)
	if err := writer.Write(entries, outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles converted successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(entries))

	return nil
}
