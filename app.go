package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brayohmurithidev/donatehub-landing/apiclient"
	"github.com/brayohmurithidev/donatehub-landing/config"
	"github.com/brayohmurithidev/donatehub-landing/refstore"
	"github.com/brayohmurithidev/donatehub-landing/tracker"
)

// storage is what the commands need from a reference store.
type storage interface {
	refstore.Store
	refstore.StatusRecorder
	refstore.Lister
	refstore.Searcher
}

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *apiclient.Client
	store   storage
	session *tracker.Session
	closeDB func() error
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := cfg.NewLogger()
	slog.SetDefault(log)

	a := &app{cfg: cfg, logger: log, closeDB: func() error { return nil }}

	if ephemeral {
		a.store = refstore.NewMemoryStore()
	} else {
		db, err := openDB(cfg.DB, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		gs := refstore.NewGormStore(db)
		if err := gs.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		a.store = gs
		a.closeDB = sqlDB.Close
	}

	a.client = apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithRateLimit(cfg.APIRateLimit, cfg.APIRateBurst),
		apiclient.WithLogger(log),
	)

	opts := []tracker.Option{
		tracker.WithLogger(log),
		tracker.WithPollInterval(cfg.PollInterval),
		tracker.WithTrackingTimeout(cfg.TrackingTimeout),
		tracker.WithNoticeTTLs(cfg.NoticeSuccess, cfg.NoticeError, cfg.NoticeCard),
	}
	if cfg.StatusTable != nil {
		opts = append(opts, tracker.WithStatusTable(tracker.NewStatusTable(cfg.StatusTable.Success, cfg.StatusTable.Failure)))
	}
	a.session = tracker.NewSession(a.client, a.store, opts...)
	return a, nil
}

// close ends the session (the page unload) and releases the database.
func (a *app) close(ctx context.Context) {
	if err := a.session.Close(ctx); err != nil {
		a.logger.Error("closing tracking session", "err", err)
	}
	if err := a.closeDB(); err != nil {
		a.logger.Error("closing database", "err", err)
	}
}

func openDB(cfg config.Database, level slog.Level) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if level <= slog.LevelDebug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		dialector = sqlite.Open(cfg.SQLitePath)
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
