package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"classwork-chatbot/internal/config"
	"classwork-chatbot/internal/pkg/logger"
)

func main() {
	// .env is optional; real environment variables still win.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "classwork-chatbot",
		Short:        "Course materials Q&A service",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update database tables and exit",
			RunE:  runMigrate,
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config failed: %w", err)
	}
	log, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger failed: %w", err)
	}
	return cfg, log, nil
}
