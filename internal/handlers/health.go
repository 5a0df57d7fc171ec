package handlers

import (
	"net/http"
)

// HandleHealthcheck is the bare liveness probe.
func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		h.writeError(w, "Unable to write healthcheck", http.StatusInternalServerError)
	}
}

// HandleHealth reports per-dependency readiness. The server runs without
// Vision or Sheets credentials, so a missing dependency degrades the status
// instead of failing the probe.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services := map[string]string{
		"ocr":    "not_configured",
		"gemini": "not_configured",
		"sheets": "not_configured",
	}
	if h.extractor != nil {
		services["ocr"] = "connected"
	}
	if h.cfg.GeminiAPIKey != "" && h.aiService != nil {
		services["gemini"] = "connected"
	}
	if h.sheets != nil {
		services["sheets"] = "connected"
	}

	status := "healthy"
	if services["ocr"] != "connected" || services["gemini"] != "connected" {
		status = "degraded"
	}

	h.writeJSON(w, map[string]any{
		"status":   status,
		"services": services,
	})
}
