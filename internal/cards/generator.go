// Package cards generates social-card images by shelling out to an
// ImageMagick-compatible tool with a fixed layout.
package cards

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Card layout constants. The 1200x630 canvas matches the Open Graph
// recommended size.
const (
	cardSize     = "1200x630"
	titlePoint   = "64"
	datePoint    = "28"
	textColor    = "#f8f8f2"
	defaultTheme = "midnight"
)

// themes maps a card_theme metadata value to a background color.
var themes = map[string]string{
	"midnight": "#1b1e2b",
	"ember":    "#3b1f1f",
	"moss":     "#1e2b1f",
}

// Generator renders card images via an external tool.
type Generator struct {
	tool   string // e.g. "magick" or "convert"
	outDir string
}

// NewGenerator creates a Generator. The output directory is created on
// first use.
func NewGenerator(tool, outDir string) *Generator {
	return &Generator{tool: tool, outDir: outDir}
}

// Generate renders a card for one record and returns the output path.
// The tool is treated as a black box: any non-zero exit is an error
// carrying the tool's stderr.
func (g *Generator) Generate(ctx context.Context, id, title string, date time.Time, theme string) (string, error) {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return "", fmt.Errorf("cards: mkdir output dir: %w", err)
	}

	bg, ok := themes[theme]
	if !ok {
		bg = themes[defaultTheme]
	}
	out := filepath.Join(g.outDir, id+".png")

	args := []string{
		"-size", cardSize,
		"xc:" + bg,
		"-fill", textColor,
		"-gravity", "northwest",
		"-pointsize", titlePoint,
		"-annotate", "+80+180", title,
		"-pointsize", datePoint,
		"-annotate", "+80+520", date.Format("January 2, 2006"),
		out,
	}

	cmd := exec.CommandContext(ctx, g.tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("cards: %s failed: %w: %s", g.tool, err, stderr.String())
	}
	return out, nil
}
