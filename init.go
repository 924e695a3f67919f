package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/resellkit/pricing/internal/catalogfile"
	"github.com/resellkit/pricing/internal/config"
	"github.com/resellkit/pricing/internal/telemetry"
	"github.com/resellkit/pricing/pkg/pricing"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.Attributes())
}

func initEngine(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) (*pricing.Engine, error) {
	catalog, err := catalogfile.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return pricing.New(catalog, cfg.EngineOptions(), logger, tracer), nil
}

// runPrice is the one-shot CLI path: load the catalog, price a single
// request from a file, and print the result as JSON.
func runPrice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("catalog"); path != "" {
		cfg.CatalogPath = path
	}

	logger, err := telemetry.NewCLILogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	engine, err := initEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading request %s: %w", inputPath, err)
	}

	var req pricing.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parsing request %s: %w", inputPath, err)
	}
	if req.TargetMargin == 0 {
		req.TargetMargin = cfg.TargetMargin
	}
	if req.StoreTier == "" {
		req.StoreTier = pricing.TierNone
	}

	result, err := engine.Price(cmd.Context(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
