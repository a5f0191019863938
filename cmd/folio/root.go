package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gabrielmiguelok/golivefolio/internal/config"
	"github.com/gabrielmiguelok/golivefolio/internal/site"
	"github.com/gabrielmiguelok/golivefolio/pkg/content"
	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "folio",
		Short: "Personal portfolio with a live page and a toy console",
		Long: `folio renders a portfolio from a JSON document. It serves the page with
a live connection, exports it as static HTML, and runs the same command
console in a local terminal.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file path")

	root.AddCommand(
		newServeCmd(opts),
		newConsoleCmd(opts),
		newBuildCmd(opts),
		newInitCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads and validates the configuration.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg. Output goes to w unless a
// log file is configured.
func newLogger(cfg config.LogConfig, w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := []logging.LoggerOption{logging.WithLevel(level), logging.WithOutput(w)}
	if cfg.File != "" {
		opts = append(opts, logging.WithFile(cfg.File))
	}
	if cfg.Format == "json" {
		opts = append(opts, logging.WithJSON())
	}
	return logging.NewSlogLogger(opts...), nil
}

func siteMeta(cfg config.SiteConfig) site.Meta {
	return site.Meta{
		Title:       cfg.Title,
		Owner:       cfg.Owner,
		Description: cfg.Description,
		Email:       cfg.Email,
		URL:         cfg.URL,
	}
}

func contentSource(cfg config.ContentConfig) content.Source {
	return content.WithTimeout(content.NewSource(cfg.Source), cfg.FetchTimeout)
}
