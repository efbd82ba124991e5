// Package parser turns Markdown source files into content records:
// it splits YAML frontmatter from the body, decodes the known metadata
// keys, derives the id and date from the filename, and renders the body
// to HTML.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakmund/stanza/internal/models"
)

// filenameRe matches the published-file naming contract: an eight-digit
// date prefix, a dash, then the slug.
var filenameRe = regexp.MustCompile(`^(\d{8})-(.+)\.md$`)

const dateLayout = "20060102"

// Metadata is the typed frontmatter block. Only these keys are
// recognised; anything else in the block produces a warning.
type Metadata struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Category    string   `yaml:"category"`
	Published   *bool    `yaml:"published"`
	CardTheme   string   `yaml:"card_theme"`
}

var knownKeys = map[string]struct{}{
	"title":       {},
	"description": {},
	"tags":        {},
	"category":    {},
	"published":   {},
	"card_theme":  {},
}

// IsPublished returns the published flag, defaulting to true when the
// frontmatter does not set it.
func (m *Metadata) IsPublished() bool {
	return m.Published == nil || *m.Published
}

// ParseFilename derives the record id and date from a published
// filename of the form YYYYMMDD-slug.md. A filename that does not match
// the pattern is an error; the caller treats it as fatal for the load.
func ParseFilename(name string) (string, time.Time, error) {
	base := path.Base(name)
	m := filenameRe.FindStringSubmatch(base)
	if m == nil {
		return "", time.Time{}, fmt.Errorf("parser: filename %q does not match YYYYMMDD-slug.md", base)
	}
	date, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parser: filename %q has unparseable date: %w", base, err)
	}
	return m[2], date, nil
}

// ParseMeta splits frontmatter from the Markdown body and decodes it.
//
// Degraded results are deliberate: a missing delimiter means the whole
// file is body with empty metadata, and a malformed YAML block likewise
// falls back to empty metadata. Both cases are reported through the
// returned warnings rather than an error so one bad file never fails a
// whole category load.
func ParseMeta(data []byte) (Metadata, string, []string) {
	var warnings []string

	block, body, found := splitFrontmatter(data)
	if !found {
		return Metadata{}, body, []string{"no frontmatter delimiter found, treating whole file as body"}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(block, &raw); err != nil {
		return Metadata{}, body, []string{fmt.Sprintf("malformed frontmatter ignored: %v", err)}
	}

	for key := range raw {
		if _, ok := knownKeys[key]; !ok {
			warnings = append(warnings, fmt.Sprintf("unknown frontmatter key %q ignored", key))
		}
	}
	sort.Strings(warnings)

	var meta Metadata
	if err := yaml.Unmarshal(block, &meta); err != nil {
		// Keys exist but with incompatible types (e.g. tags: 42).
		return Metadata{}, body, []string{fmt.Sprintf("malformed frontmatter ignored: %v", err)}
	}

	return meta, body, warnings
}

// Split exposes the frontmatter splitter for callers that need the raw
// YAML block, such as the draft workflow's metadata rewrite.
func Split(data []byte) (block []byte, body string, found bool) {
	return splitFrontmatter(data)
}

// splitFrontmatter separates the YAML block between leading ---
// delimiters from the Markdown body. found is false when there is no
// recognisable block, in which case body is the whole input.
func splitFrontmatter(data []byte) (block []byte, body string, found bool) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), false
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), false
	}

	block = rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body = strings.TrimLeft(string(afterDelim), "\n\r")
	return block, body, true
}

// ParseFile runs the full pipeline for one published content file:
// filename derivation, metadata decode, and body rendering. The
// returned warnings carry per-file degradations that the loader logs.
func ParseFile(name string, data []byte) (*models.ContentRecord, []string, error) {
	id, date, err := ParseFilename(name)
	if err != nil {
		return nil, nil, err
	}

	meta, body, warnings := ParseMeta(data)

	html, err := Render(body)
	if err != nil {
		return nil, warnings, fmt.Errorf("parser: render %s: %w", name, err)
	}

	desc := meta.Description
	if desc == "" {
		desc = Summarize(html, 160)
	}

	return &models.ContentRecord{
		ID:          id,
		Date:        date,
		Title:       meta.Title,
		Description: desc,
		Tags:        meta.Tags,
		Section:     meta.Category,
		CardTheme:   meta.CardTheme,
		Published:   meta.IsPublished(),
		Body:        html,
		SourcePath:  name,
	}, warnings, nil
}
