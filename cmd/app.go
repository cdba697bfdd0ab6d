package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"

	"crowdfund-escrow/internal/adapter/asset"
	"crowdfund-escrow/internal/adapter/clock"
	"crowdfund-escrow/internal/adapter/postgres"
	"crowdfund-escrow/internal/adapter/sqlite"
	"crowdfund-escrow/internal/config"
	"crowdfund-escrow/internal/config/configs"
	"crowdfund-escrow/internal/core/port"
	"crowdfund-escrow/internal/db"
)

// newLogger builds the process logger. Records go to stdout, or to a size
// rotated file when LOG_FILE is set. The returned closer flushes the file.
func newLogger(cfg configs.Logger, env string) (*slog.Logger, io.Closer) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out, closer = rotating, rotating
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	switch cfg.SlogFormat() {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler).With(slog.String("env", env)), closer
}

// bootstrap loads the configuration and the logger shared by every
// subcommand.
func bootstrap() (config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer := newLogger(cfg.Log, cfg.Env)
	return cfg, logger, closer, nil
}

// openStore connects the ledger store selected by STORAGE_DRIVER. The
// returned function releases it.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.CampaignRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("ledger store ready", slog.String("driver", "sqlite"), slog.String("path", cfg.SQLite.Path))
		return sqlite.NewCampaignRepository(sqlDB), func() { _ = sqlDB.Close() }, nil
	default:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection: %w", err)
		}
		logger.Info("ledger store ready", slog.String("driver", "postgres"))
		return postgres.NewCampaignRepository(pool), pool.Close, nil
	}
}

// newAssetService returns the external token service client when ASSET_URL
// is set, and an in-process ledger otherwise. The ledger is returned
// separately so it can be exposed for minting.
func newAssetService(cfg configs.Asset) (port.AssetService, *asset.MemoryLedger, error) {
	if cfg.URL == "" {
		ledger := asset.NewMemoryLedger()
		return ledger, ledger, nil
	}
	client, err := asset.NewClient(cfg.URL, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	return client, nil, nil
}

// newClock returns an NTP corrected clock when CLOCK_NTP_SERVER is set and
// registers its health collector on reg.
func newClock(cfg configs.Clock, reg prometheus.Registerer, logger *slog.Logger) (port.Clock, error) {
	if cfg.NTPServer == "" {
		return clock.System{}, nil
	}
	c := clock.NewNTP(cfg.NTPServer, cfg.SyncInterval, cfg.UnhealthyThreshold)
	if healthy, offset, _, err := c.Health(); !healthy {
		logger.Warn("ntp clock unhealthy",
			slog.String("server", cfg.NTPServer),
			slog.Duration("offset", offset),
			slog.Any("error", err),
		)
	}
	if reg != nil {
		if err := clock.RegisterMetrics(reg, c); err != nil {
			return nil, fmt.Errorf("register clock metrics: %w", err)
		}
	}
	return c, nil
}
