// Package config loads the sssg.yaml site configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
}

// SiteConfig holds site-wide metadata exposed to templates and the feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Author      string `yaml:"author,omitempty"`
}

// ContentConfig describes where source documents live.
type ContentConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"extensions,omitempty"`
	// Templates optionally points at a directory of page/index template
	// overrides; embedded defaults are used when absent.
	Templates string `yaml:"templates,omitempty"`
}

// OutputConfig describes the emitted site tree.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// BuildConfig tunes the build itself.
type BuildConfig struct {
	// Workers bounds parallel document rendering. Zero or one renders
	// sequentially.
	Workers int `yaml:"workers,omitempty"`
	// SummaryLength is the rune budget for derived excerpts when a post has
	// no explicit summary.
	SummaryLength int `yaml:"summary_length,omitempty"`
	// Feed toggles feed.xml emission; enabled unless set to false.
	Feed      *bool `yaml:"feed,omitempty"`
	FeedLimit int   `yaml:"feed_limit,omitempty"`
	// HighlightStyle is the chroma style used for fenced code blocks.
	HighlightStyle string `yaml:"highlight_style,omitempty"`
}

// FeedEnabled reports whether feed.xml should be emitted.
func (b BuildConfig) FeedEnabled() bool {
	return b.Feed == nil || *b.Feed
}

// Default returns the configuration used when no sssg.yaml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the specified file. A missing file is not an
// error: defaults apply, so a bare content directory builds out of the box.
func Load(configPath string) (*Config, error) {
	// Load .env first so env expansion below sees its values.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Blog"
	}
	if c.Content.Directory == "" {
		c.Content.Directory = "./content"
	}
	if len(c.Content.Extensions) == 0 {
		c.Content.Extensions = []string{".md", ".markdown"}
	}
	if c.Content.Templates == "" {
		c.Content.Templates = "./templates"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./_site"
	}
	if c.Build.SummaryLength == 0 {
		c.Build.SummaryLength = 160
	}
	if c.Build.FeedLimit == 0 {
		c.Build.FeedLimit = 20
	}
	if c.Build.HighlightStyle == "" {
		c.Build.HighlightStyle = "github"
	}
}

var feedOn = true

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteConfig{
			Title:       "My Blog",
			Description: "Occasional notes",
			BaseURL:     "https://example.com",
			Author:      "Author Name",
		},
		Content: ContentConfig{
			Directory:  "./content",
			Extensions: []string{".md", ".markdown"},
		},
		Output: OutputConfig{
			Directory: "./_site",
		},
		Build: BuildConfig{
			SummaryLength:  160,
			Feed:           &feedOn,
			FeedLimit:      20,
			HighlightStyle: "github",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
