package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"commuterhythm/internal/config"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/services"
)

func main() {
	// Load .env file for local development
	_ = godotenv.Load()

	// Logs go to stderr so --json output stays clean
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.LoadCurationConfig(cfg.CurationConfigPath)

	previewer := NewPreviewer(PreviewerOpts{
		Client:    services.NewGeminiServiceFromConfig(cfg),
		Localizer: i18n.NewLocalizer(cfg.DefaultLocale),
		Curation:  config.GetCurationConfig,
	})

	app := &cli.Command{
		Name:      "issue-preview",
		Usage:     "Curate one issue from the terminal and print its tracks",
		ArgsUsage: "<theme>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the issue as JSON, as served by /api/v1/issue",
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: "Locale for error messages (ko or en)",
				Value: cfg.DefaultLocale,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up after this long",
				Value: cfg.GeminiTimeout,
			},
		},
		Action: previewer.Run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("Preview failed", "error", err)
		os.Exit(1)
	}
}
