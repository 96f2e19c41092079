package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/config"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

var (
	appLogger *logger.Logger
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "guvenoto",
	Short: "GuvenOto listing service",
	Long:  "Vehicle and spare part classifieds backend: listing lifecycle, search and facets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appLogger = logger.NewLogger()
		c, err := config.LoadConfig(appLogger)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = c
		appLogger.Info("Configuration loaded", zap.String("service_name", cfg.ServiceName), zap.String("command", cmd.Name()))
		return nil
	},
	RunE: runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceUsage = true
}
