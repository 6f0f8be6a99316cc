package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"auto-validator/core/config"
	"auto-validator/core/database"
	"auto-validator/core/lock"
	"auto-validator/core/logger"
	"auto-validator/core/source"
	"auto-validator/core/storage"
	"auto-validator/feature/integrity"
	"auto-validator/feature/subnets"
	"auto-validator/feature/validators"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	fetcher *source.Fetcher
	locker  lock.Locker
}

// bootstrap loads configuration and connects the database, the optional
// object storage and the sync lock backend.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	l.Info("Connected to database", zap.String("driver", cfg.Database.Driver), zap.String("name", cfg.Database.Name))

	var objects storage.Client
	if cfg.Storage.Enabled() {
		if objects, err = storage.NewClient(cfg.Storage); err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	locker, err := lock.New(ctx, cfg.Redis, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lock backend: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  l,
		db:      db,
		fetcher: source.New(cfg.Source, objects, l),
		locker:  locker,
	}, nil
}

func (a *app) cacheTTL() time.Duration {
	return time.Duration(a.cfg.Source.CacheTTLSeconds) * time.Second
}

func (a *app) lockTTL() time.Duration {
	return time.Duration(a.cfg.Sync.LockTTLSeconds) * time.Second
}

func (a *app) validatorsFeature() *validators.Feature {
	f := validators.NewFeature(a.db, a.fetcher.Fetch, a.locker, a.cfg.Source.ValidatorsLocation,
		a.cacheTTL(), a.cfg.Sync, a.logger)
	f.Service().SetDefaultSchema(a.cfg.Server.DefaultSchema)
	return f
}

func (a *app) subnetsFeature() *subnets.Feature {
	return subnets.NewFeature(a.db, a.fetcher.Fetch, a.locker, a.cfg.Source.SubnetsLocation,
		a.cacheTTL(), a.lockTTL(), a.logger)
}

func (a *app) integrityFeature() *integrity.Feature {
	return integrity.NewFeature(a.db, a.fetcher, integrity.Locations{
		Validators: a.cfg.Source.ValidatorsLocation,
		Subnets:    a.cfg.Source.SubnetsLocation,
	}, a.logger)
}

// Close releases the lock backend and the database pool.
func (a *app) Close() {
	if c, ok := a.locker.(io.Closer); ok {
		_ = c.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
