package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/ai"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/config"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/export"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/gemini"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/handlers"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/ocr"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scan-to-listing web server",
		Long: `Starts the Fastpitch API server on the specified port.

The server accepts card and book title page images, extracts their text with
Google Vision OCR, normalizes it into structured listing fields with Gemini,
and exports reviewed records to CSV, Google Sheets, or Parquet.`,
		Example: `  # Start server on the configured port (default 3001)
  fastpitch serve

  # Start server on custom port
  fastpitch serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}

			handler, cleanup, err := buildHandler(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/api/process", handler.HandleProcessCard)
			mux.HandleFunc("/api/process-book", handler.HandleProcessBook)
			mux.HandleFunc("/api/cards", handler.HandleCards)
			mux.HandleFunc("/api/cards/", handler.HandleCardDetail)
			mux.HandleFunc("/api/books", handler.HandleBooks)
			mux.HandleFunc("/api/books/", handler.HandleBookDetail)
			mux.HandleFunc("/api/normalize", handler.HandleNormalize)
			mux.HandleFunc("/api/normalize/title-description", handler.HandleNormalizeTitleDescription)
			mux.HandleFunc("/api/export/", handler.HandleExport)
			mux.HandleFunc("/api/health", handler.HandleHealth)
			mux.HandleFunc("/static/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", handler.HandleHealthcheck)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Fastpitch API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}

// buildHandler wires the pipeline collaborators from config. Vision and
// Sheets are optional: the server starts without them and the affected
// endpoints report their absence.
func buildHandler(ctx context.Context, cfg *config.Config) (*handlers.Handler, func(), error) {
	var aiService *ai.Service
	cleanup := func() {}

	if cfg.GeminiAPIKey != "" {
		provider, err := gemini.New(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		aiService = ai.NewService(provider)
		cleanup = func() {
			if err := provider.Close(); err != nil {
				slog.Error("Failed to close gemini client", "err", err)
			}
		}
	} else {
		slog.Warn("GEMINI_API_KEY not set, AI normalization disabled")
	}

	var extractor ocr.TextExtractor
	visionService, err := ocr.NewService(ctx, cfg.VisionCredentialsFile)
	if err != nil {
		slog.Warn("Google Vision unavailable, OCR disabled", "err", err)
	} else {
		extractor = visionService
	}

	var sheetsWriter *export.SheetsWriter
	if cfg.Sheets.CredentialsFile != "" || cfg.Sheets.CredentialsJSON != "" {
		sheetsWriter, err = export.NewSheetsWriter(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.CredentialsJSON)
		if err != nil {
			slog.Warn("Google Sheets unavailable, sheets export disabled", "err", err)
		}
	} else {
		slog.Warn("Google Sheets credentials not set, sheets export disabled")
	}

	return handlers.New(cfg, storage.New(), extractor, aiService, sheetsWriter), cleanup, nil
}
