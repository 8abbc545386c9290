package cli

import (
	"github.com/spf13/cobra"

	"github.com/tingshu-cli/tingshu/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tingshu",
	Short: "Bilingual subtitle toolkit and audiobook generator",
	Long: `Tingshu works on bilingual subtitle files stored as JSON Lines:
one JSON object per line with "index" and "timestamp" fields, plus
english_text, chinese_text, and analysis annotations.

It can import SRT files, fill in Chinese translations, annotate entries
with learner notes, and read the entries aloud into an audiobook.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
		initConfig()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
