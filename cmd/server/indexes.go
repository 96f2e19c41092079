package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/repository/mongodb"
)

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the MongoDB indexes for listing and counter collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		if err := mongodb.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase), appLogger); err != nil {
			return err
		}
		appLogger.Info("Indexes ensured", zap.String("database", cfg.MongoDatabase))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ensureIndexesCmd)
}
