package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/resellkit/pricing/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "pricing",
	Short:   "Relist Pricing - landed-cost reverse-pricing and zone-profitability service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pricing HTTP server",
	RunE:  runServe,
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price one request from a JSON file and print the result",
	RunE:  runPrice,
}

func init() {
	priceCmd.Flags().String("input", "", "path to a pricing request JSON file")
	priceCmd.Flags().String("catalog", "", "override the catalog snapshot path")
	priceCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(priceCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	engine, err := initEngine(cfg, logger, tracer)
	if err != nil {
		return err
	}

	logger.Info("Starting Relist Pricing",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.String("catalog", cfg.CatalogPath),
	)

	srv := server.New(server.Config{
		Port:                cfg.Port,
		DefaultTargetMargin: cfg.TargetMargin,
	}, engine, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
