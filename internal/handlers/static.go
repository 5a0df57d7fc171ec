package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
)

// HandleStatic serves uploaded images back to the review UI.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/static/")

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	if name, ok := strings.CutPrefix(path, "uploads/"); ok {
		http.ServeFile(w, r, filepath.Join(h.cfg.Upload.Dir, name))
		return
	}

	http.NotFound(w, r)
}
