package cmd

import (
	"fmt"
	"log/slog"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/config"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/gemini"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/ocr"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify Google Vision and Gemini connectivity",
		Long: `Checks that the configured credentials actually work: creates a Vision
client and lists the available Gemini models. Run this after editing .env to
catch credential problems before starting the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()
			failures := 0

			visionService, err := ocr.NewService(ctx, cfg.VisionCredentialsFile)
			if err != nil || !visionService.CheckConnection(ctx) {
				slog.Error("Google Vision check failed", "err", err)
				failures++
			} else {
				slog.Info("Google Vision OK")
			}

			if cfg.GeminiAPIKey == "" {
				slog.Error("GEMINI_API_KEY is not set")
				failures++
			} else {
				provider, err := gemini.New(ctx, cfg.GeminiAPIKey)
				if err != nil {
					slog.Error("Gemini client creation failed", "err", err)
					failures++
				} else {
					defer func() {
						if err := provider.Close(); err != nil {
							slog.Error("Failed to close gemini client", "err", err)
						}
					}()
					models, err := provider.ListModels(ctx)
					if err != nil {
						slog.Error("Gemini model listing failed", "err", err)
						failures++
					} else {
						slog.Info("Gemini OK", "models", len(models))
					}
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d connectivity check(s) failed", failures)
			}
			return nil
		},
	}
}
