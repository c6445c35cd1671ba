package main

import (
	"fmt"

	"go.uber.org/zap"

	"sheetrecon/internal/config"
	"sheetrecon/internal/importer"
	"sheetrecon/internal/schema"
)

// env is what every command needs: settings, logger, catalog and importer.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *schema.Registry
	importer *importer.Importer
}

// loadEnv reads the configuration and the catalog. A non-empty catalog
// overrides SHEETRECON_CATALOG.
func loadEnv(catalog string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if catalog != "" {
		cfg.Catalog = catalog
	}

	logger, err := cfg.Logger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	reg, err := schema.LoadRegistry(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	logger.Debug("catalog loaded", zap.String("path", cfg.Catalog), zap.Strings("pages", reg.Pages()))

	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		importer: importer.New(reg, cfg.ReviewConfig(), logger),
	}, nil
}
