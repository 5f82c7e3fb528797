package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docclassifier/config"
	"docclassifier/db"
	"docclassifier/logger"
	"docclassifier/trainer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "train_model",
		Short:         "Train the document classifier and save it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return train(cmd, configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to config file (missing file means defaults)")

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List recorded training runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd, configPath, limit)
		},
	}
	history.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show (0 for all)")
	root.AddCommand(history)

	return root
}

func setup(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(logger.Options{
		Env:        cfg.Log.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func train(cmd *cobra.Command, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	t := trainer.New(cfg, log, cmd.OutOrStdout())
	if cfg.Database.Path != "" {
		t.WithStore(func() (*db.TrainingStore, error) { return db.Open(cfg.Database.Path) })
	}

	if _, err := t.Run(cmd.Context()); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	return nil
}

func showHistory(cmd *cobra.Command, configPath string, limit int) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Database.Path == "" {
		return fmt.Errorf("training log disabled: database.path is empty")
	}
	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	logs, err := store.LoadTrainingLog(cmd.Context(), limit)
	if err != nil {
		return err
	}
	trainer.RenderHistory(cmd.OutOrStdout(), logs)
	return nil
}
