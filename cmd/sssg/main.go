package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/sssg/internal/config"
	"git.home.luguber.info/inful/sssg/internal/content"
	"git.home.luguber.info/inful/sssg/internal/logfields"
	"git.home.luguber.info/inful/sssg/internal/preview"
	"git.home.luguber.info/inful/sssg/internal/render"
	"git.home.luguber.info/inful/sssg/internal/site"
)

var CLI struct {
	Config    string `short:"c" help:"Configuration file path" default:"sssg.yaml"`
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	LogFormat string `help:"Log output format" enum:"text,json" default:"text"`

	Build struct {
		Content string `short:"C" help:"Content root directory (overrides config)"`
		Output  string `short:"o" help:"Output directory for the generated site (overrides config)"`
		Drafts  bool   `help:"Include documents marked draft"`
	} `cmd:"" help:"Build the static site from the content directory"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Serve struct {
		Port   int  `short:"p" help:"Port to serve on" default:"8080"`
		Drafts bool `help:"Include documents marked draft"`
	} `cmd:"" help:"Build, serve locally, and rebuild on content changes"`
}

func main() {
	ctx := kong.Parse(&CLI)
	setupLogging()

	switch ctx.Command() {
	case "build":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		applyOverrides(cfg)
		if err := runBuild(cfg, CLI.Build.Drafts); err != nil {
			slog.Error("Build failed", logfields.Error(err))
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Configuration written", logfields.Path(CLI.Config))
	case "serve":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		if err := runServe(cfg, CLI.Serve.Port, CLI.Serve.Drafts); err != nil {
			slog.Error("Serve failed", logfields.Error(err))
			os.Exit(1)
		}
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if CLI.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func applyOverrides(cfg *config.Config) {
	if CLI.Build.Content != "" {
		cfg.Content.Directory = CLI.Build.Content
	}
	if CLI.Build.Output != "" {
		cfg.Output.Directory = CLI.Build.Output
	}
}

// runBuild performs one full, stateless build pass: discover, validate,
// render, emit. Every collected problem is logged before the error returns so
// authors can fix all broken documents in one go.
func runBuild(cfg *config.Config, includeDrafts bool) error {
	buildID := uuid.NewString()
	slog.Info("Starting site build",
		logfields.BuildID(buildID),
		logfields.Path(cfg.Content.Directory),
		slog.String("output", cfg.Output.Directory))

	loader := content.NewLoader(cfg.Content.Directory, cfg.Content.Extensions)
	scan, err := loader.Load()
	if err != nil {
		return err
	}

	if len(scan.Issues) > 0 {
		for _, issue := range scan.Issues {
			slog.Error("Malformed front matter",
				logfields.BuildID(buildID),
				logfields.Path(issue.Path),
				logfields.Error(issue.Err))
		}
		return fmt.Errorf("%d files have malformed front matter", len(scan.Issues))
	}

	s, err := site.Build(scan.Files, site.Options{
		SummaryLength: cfg.Build.SummaryLength,
		IncludeDrafts: includeDrafts,
		Title:         cfg.Site.Title,
		Description:   cfg.Site.Description,
		BaseURL:       cfg.Site.BaseURL,
		Author:        cfg.Site.Author,
	})
	if err != nil {
		var violations *site.Violations
		if errors.As(err, &violations) {
			for _, v := range violations.Items() {
				slog.Error("Document failed validation",
					logfields.BuildID(buildID),
					logfields.Document(v.Document),
					logfields.Field(v.Field),
					logfields.Reason(v.Reason))
			}
		}
		return err
	}

	templates, err := render.LoadTemplates(cfg.Content.Templates)
	if err != nil {
		return err
	}

	generator := render.NewGenerator(cfg.Output.Directory, render.NewMarkdown(cfg.Build.HighlightStyle), templates).
		WithWorkers(cfg.Build.Workers)
	if cfg.Build.FeedEnabled() {
		generator = generator.WithFeed(cfg.Build.FeedLimit)
	}

	if err := generator.GenerateSite(s, scan.Assets); err != nil {
		var failures render.RenderErrors
		if errors.As(err, &failures) {
			for _, f := range failures {
				slog.Error("Document failed to render",
					logfields.BuildID(buildID),
					logfields.Document(f.Document),
					logfields.Error(f.Err))
			}
		}
		return err
	}

	slog.Info("Build complete",
		logfields.BuildID(buildID),
		logfields.Count(len(s.Documents)),
		slog.String("output", cfg.Output.Directory))
	return nil
}

func runServe(cfg *config.Config, port int, includeDrafts bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := &preview.Server{
		ContentDir: cfg.Content.Directory,
		OutputDir:  cfg.Output.Directory,
		Port:       port,
		Rebuild:    func() error { return runBuild(cfg, includeDrafts) },
	}
	return server.Run(ctx)
}
