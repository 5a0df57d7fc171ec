package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// A JSON body means the image lives at a URL instead of in the form
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	maxSize := h.cfg.Upload.MaxFileSize
	fileData, err := io.ReadAll(io.LimitReader(file, maxSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if int64(len(fileData)) >= maxSize {
		h.writeError(w, fmt.Sprintf("File too large (max %dMB)", maxSize/(1024*1024)), http.StatusBadRequest)
		return
	}

	id, filename, err := h.saveImageFile(fileData, header.Filename)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{
		"id":       id,
		"url":      "/static/uploads/" + filename,
		"filename": filename,
	})
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	imageData, err := h.downloadImageFromURL(request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	parts := strings.Split(request.ImageURL, "/")
	originalName := parts[len(parts)-1]
	if originalName == "" {
		originalName = "image.jpg"
	}

	id, filename, err := h.saveImageFile(imageData, originalName)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Image downloaded from URL", "url", request.ImageURL, "filename", filename)

	h.writeJSON(w, map[string]any{
		"id":       id,
		"url":      "/static/uploads/" + filename,
		"filename": filename,
		"source":   "url",
	})
}

// saveImageFile writes the upload under a generated id so concurrent uploads
// of identically named files never collide.
func (h *Handler) saveImageFile(fileData []byte, originalName string) (id, filename string, err error) {
	if err := h.ensureUploadsDir(); err != nil {
		return "", "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	id = uuid.NewString()
	filename = id + filepath.Ext(originalName)
	path := filepath.Join(h.cfg.Upload.Dir, filename)
	if err := os.WriteFile(path, fileData, 0644); err != nil {
		return "", "", fmt.Errorf("failed to save image: %w", err)
	}

	slog.Info("Image saved", "filename", filename, "bytes", len(fileData))
	return id, filename, nil
}

func (h *Handler) downloadImageFromURL(imageURL string) ([]byte, error) {
	resp, err := http.Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.cfg.Upload.MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("downloaded image is empty")
	}
	return data, nil
}
