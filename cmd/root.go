package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fastpitch",
		Short: "Scan-to-listing tool for sports cards and books",
		Long: `Fastpitch turns photos of sports cards and book title pages into structured
listing data. Images are run through Google Vision OCR, normalized into a fixed
field schema with Gemini, and exported to CSV or Google Sheets.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())

	return cmd
}
