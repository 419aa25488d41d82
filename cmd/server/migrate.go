package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"classwork-chatbot/internal/platform/database"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.New(cmd.Context(), cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("migration complete", zap.String("driver", cfg.Database.Driver))
	return nil
}
