package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ArticlesAggregator/internal/app"
	"ArticlesAggregator/internal/config"
	"ArticlesAggregator/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type rootOptions struct {
	configPath string
	apiVersion string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "articlesaggregator",
		Short:        "Article aggregation service",
		Long:         "articlesaggregator reads articles from a configured source, enriches them with author metadata and serves them over HTTP.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (overrides ARTICLES_AGGREGATOR_CONFIG)")
	root.PersistentFlags().StringVar(&opts.apiVersion, "api-version", "", "interface version: v1 (5 articles) or v2 (10 articles)")

	root.AddCommand(
		newServeCmd(opts),
		newFetchCmd(opts),
		newAddCmd(opts),
		newAuthorCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *rootOptions) loadConfig() config.Config {
	var cfg config.Config
	if o.configPath != "" {
		cfg = config.LoadFrom(o.configPath)
	} else {
		cfg = config.Load()
	}
	if o.apiVersion != "" {
		cfg.API.Version = o.apiVersion
		cfg.Normalize()
	}
	return cfg
}

// open builds the application with logs sent to w.
func (o *rootOptions) open(w io.Writer) (*app.Application, error) {
	cfg := o.loadConfig()
	application, err := app.New(cfg, logging.NewWithWriter(w, cfg.Logging.Level))
	if err != nil {
		return nil, fmt.Errorf("building application: %w", err)
	}
	return application, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "articlesaggregator %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
