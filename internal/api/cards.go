package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// CardHandler serves generated social-card images so they are publicly
// reachable for og:image tags.
type CardHandler struct {
	cardDir string
}

// NewCardHandler creates a handler over the card output directory. The
// directory is resolved to an absolute path so the containment check in
// safeName holds for relative configurations like "./cards".
func NewCardHandler(cardDir string) *CardHandler {
	if abs, err := filepath.Abs(cardDir); err == nil {
		cardDir = abs
	}
	return &CardHandler{cardDir: cardDir}
}

// safeName validates that the filename is a plain name (no path
// separators, no traversal) and returns the absolute path under the
// card directory.
func (h *CardHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.cardDir, cleaned)
	if !strings.HasPrefix(abs, h.cardDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes card directory")
	}
	return abs, nil
}

// ServeFile handles GET /cards/{filename}.
func (h *CardHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
