package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docclassifier/config"
	qhttp "docclassifier/http"
	"docclassifier/logger"
	"docclassifier/ml"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "docclassifier",
		Short:         "Serve document category predictions over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file (missing file means defaults)")
	return cmd
}

func serve(configPath string) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
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
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// 2. Load model before opening the listener
	model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path)
	if err != nil {
		return fmt.Errorf("failed to load model %s: %w", cfg.Model.Path, err)
	}
	log.Info("model loaded",
		zap.String("path", cfg.Model.Path),
		zap.Strings("classes", model.Classes()),
		zap.String("version", cfg.Model.Version),
	)

	// 3. Start HTTP server
	serverCfg := qhttp.DefaultServerConfig()
	serverCfg.Addr = cfg.Addr()
	serverCfg.ReadTimeout = cfg.Http.ReadTimeout
	serverCfg.WriteTimeout = cfg.Http.WriteTimeout
	server := qhttp.NewServer(serverCfg, qhttp.NewPredictor(model, cfg.Model.Version), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	if err := server.Stop(); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}
	log.Info("exiting")
	return nil
}
