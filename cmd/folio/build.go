package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gabrielmiguelok/golivefolio/internal/config"
	"github.com/gabrielmiguelok/golivefolio/internal/site"
	"github.com/gabrielmiguelok/golivefolio/pkg/content"
	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
	"github.com/gabrielmiguelok/golivefolio/pkg/render"
)

func newBuildCmd(root *rootOptions) *cobra.Command {
	var (
		out  string
		dark bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the portfolio as static HTML",
		Long: `Renders the portfolio page once, without the live client, and writes it
to index.html in the output directory next to a copy of the document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if err := build(cmd.Context(), cfg, out, dark, logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(out, "index.html"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "dist", "output directory")
	cmd.Flags().BoolVar(&dark, "dark", false, "render the page in dark mode")
	return cmd
}

// build writes index.html and data.json to dir. Unlike the live page, a
// document that cannot be loaded fails the export.
func build(ctx context.Context, cfg *config.Config, dir string, dark bool, logger logging.Logger) error {
	src := content.NewCachedSource(contentSource(cfg.Content))

	doc, err := content.NewRepository(src, content.WithLogger(logger)).Load(ctx)
	if err != nil {
		return err
	}
	data, err := src.Fetch(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	page := site.Page(site.View{
		Meta:     siteMeta(cfg.Site),
		Dark:     dark,
		Sections: render.Sections(doc),
	})

	files := map[string][]byte{
		"index.html": []byte(page),
		"data.json":  data,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("wrote export file", logging.String("path", path), logging.Int("bytes", len(body)))
	}
	return nil
}
