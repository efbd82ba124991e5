package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/oakmund/stanza/internal/api"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Site    SiteConfig        `yaml:"site"`
	Content ContentConfig     `yaml:"content"`
	Drafts  DraftsConfig      `yaml:"drafts"`
	Search  SearchConfig      `yaml:"search"`
	Cards   CardsConfig       `yaml:"cards"`
	Preview PreviewConfig     `yaml:"preview"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Drafts.Validate(c.Content.Categories); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Cards.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig holds the public identity of the site: base URL, titles,
// author, and the fixed publication credits list. It is converted to an
// immutable api.Site value at startup and passed explicitly to whatever
// needs it.
type SiteConfig struct {
	BaseURL     string       `yaml:"base_url"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Author      string       `yaml:"author"`
	AuthorEmail string       `yaml:"author_email"`
	Credits     []api.Credit `yaml:"credits"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Title, validation.Required),
	)
}

// Info returns the immutable site value handed to the HTTP layer.
func (c *SiteConfig) Info() api.Site {
	return api.Site{
		BaseURL:     c.BaseURL,
		Title:       c.Title,
		Description: c.Description,
		Author:      c.Author,
		AuthorEmail: c.AuthorEmail,
		Credits:     c.Credits,
	}
}

// ContentConfig holds the content tree location and category layout.
type ContentConfig struct {
	Root       string   `yaml:"root"`
	Categories []string `yaml:"categories"`
	Watch      bool     `yaml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Categories, validation.Required, validation.Length(1, 0)),
	)
}

// DraftsConfig holds the staging directory and default destination
// category for the publish workflow.
type DraftsConfig struct {
	Dir      string `yaml:"dir"`
	Category string `yaml:"category"`
}

// Validate validates the drafts configuration against the configured
// categories.
func (c *DraftsConfig) Validate(categories []string) error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Category, validation.Required),
	); err != nil {
		return err
	}
	for _, cat := range categories {
		if cat == c.Category {
			return nil
		}
	}
	return fmt.Errorf("drafts: category %q is not a configured content category", c.Category)
}

// SearchConfig holds the SQLite search index location.
type SearchConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CardsConfig holds the social-card generation settings.
type CardsConfig struct {
	Tool string `yaml:"tool"`
	Dir  string `yaml:"dir"`
}

// Validate validates the cards configuration.
func (c *CardsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Tool, validation.Required),
		validation.Field(&c.Dir, validation.Required),
	)
}

// PreviewConfig holds the bearer token protecting the preview API.
// An empty token leaves preview endpoints unreachable.
type PreviewConfig struct {
	Token string `yaml:"token"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			BaseURL: "http://localhost:8080",
			Title:   "Stanza",
		},
		Content: ContentConfig{
			Root:       "./content",
			Categories: []string{"posts", "til", "hobby"},
			Watch:      true,
		},
		Drafts: DraftsConfig{
			Dir:      "drafts",
			Category: "posts",
		},
		Search: SearchConfig{
			Path: "./stanza.db",
		},
		Cards: CardsConfig{
			Tool: "magick",
			Dir:  "./cards",
		},
	}
}
