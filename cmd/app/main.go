package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/oakmund/stanza/internal"
	"github.com/oakmund/stanza/internal/cards"
	"github.com/oakmund/stanza/internal/drafts"
	"github.com/oakmund/stanza/internal/library"
	"github.com/oakmund/stanza/internal/mcpserver"
	"github.com/oakmund/stanza/internal/search"
	"github.com/oakmund/stanza/internal/social"
	"github.com/oakmund/stanza/internal/storage"
	pkgconfig "github.com/oakmund/stanza/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// textLogger returns a human-readable logger for interactive commands.
func textLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runDrafts(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := textLogger(cfg.App.LogLevel)

	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return err
	}

	session := &drafts.Session{
		Workflow: drafts.NewWorkflow(store, cfg.Drafts.Dir, logger),
		Category: cfg.Drafts.Category,
		Cards:    cards.NewGenerator(cfg.Cards.Tool, cfg.Cards.Dir),
		Social:   social.NewFromEnv(),
		In:       os.Stdin,
		Out:      os.Stdout,
	}
	return session.Run(ctx)
}

func runCard(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := textLogger(cfg.App.LogLevel)

	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return err
	}
	lib, err := library.New(store, cfg.Content.Categories, logger)
	if err != nil {
		return err
	}

	category := cmd.String("category")
	coll, err := lib.Collection(category)
	if err != nil {
		return fmt.Errorf("unknown category: %s", category)
	}
	rec, err := coll.ByID(cmd.String("id"), false, time.Now())
	if err != nil {
		return fmt.Errorf("no record %s in %s", cmd.String("id"), category)
	}

	gen := cards.NewGenerator(cfg.Cards.Tool, cfg.Cards.Dir)
	out, err := gen.Generate(ctx, rec.ID, rec.Title, rec.Date, rec.CardTheme)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := textLogger(cfg.App.LogLevel)

	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return err
	}
	lib, err := library.New(store, cfg.Content.Categories, logger)
	if err != nil {
		return err
	}

	ix, err := search.Open(cfg.Search.Path)
	if err != nil {
		return err
	}
	defer ix.Close()
	if err := ix.Rebuild(lib.Visible(time.Now())); err != nil {
		logger.Warn("search rebuild failed", slog.String("error", err.Error()))
	}

	workflow := drafts.NewWorkflow(store, cfg.Drafts.Dir, logger)
	return mcpserver.New(lib, ix, workflow).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:   "stanza",
		Usage:  "Personal blog engine: Markdown content pipeline, feeds, reader presence, and publishing tools",
		Action: runServe,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web server",
				Action: runServe,
			},
			{
				Name:   "drafts",
				Usage:  "Interactively publish a staged draft",
				Action: runDrafts,
			},
			{
				Name:   "card",
				Usage:  "Generate the social-card image for one record",
				Action: runCard,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "category",
						Usage:    "Content category of the record",
						Value:    "posts",
						Required: false,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Record id (filename slug)",
						Required: true,
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP authoring server on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
