package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docclassifier/categorizer"
	"docclassifier/config"
	"docclassifier/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		description string
		url         string
		offline     bool
	)

	cmd := &cobra.Command{
		Use:           "classify",
		Short:         "Categorize a document via the prediction service, falling back to keywords",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log, err := logger.New(logger.Options{Env: cfg.Log.Env, Level: cfg.Log.Level})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if url == "" {
				url = cfg.Categorizer.URL
			}

			var c categorizer.Categorizer = categorizer.NewKeywordCategorizer()
			if !offline {
				c = categorizer.WithFallback(categorizer.NewClient(url, cfg.Categorizer.Timeout), c, log)
			}

			res, err := c.Categorize(cmd.Context(), categorizer.Request{Title: title, Description: description})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file (missing file means defaults)")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().StringVar(&description, "description", "", "document description")
	cmd.Flags().StringVar(&url, "url", "", "prediction endpoint (defaults to categorizer.url)")
	cmd.Flags().BoolVar(&offline, "offline", false, "use keyword matching only")
	return cmd
}
