// Package daemon wires the cache subsystem together: every component is
// explicitly constructed and injected, with open/close handled by fx
// lifecycle hooks. Nothing in the tree holds package-level mutable
// state, so tests (and multiple embedders) can stand up isolated
// instances side by side.
package daemon

import (
	"context"

	"github.com/nkoval/mailvault/internal/bus"
	"github.com/nkoval/mailvault/internal/decode"
	"github.com/nkoval/mailvault/internal/ingest"
	"github.com/nkoval/mailvault/internal/lock"
	"github.com/nkoval/mailvault/internal/logging"
	"github.com/nkoval/mailvault/internal/paths"
	"github.com/nkoval/mailvault/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved runtime configuration passed to the fx
// module. Source and Decoder are the external collaborators (wallet RPC
// fetch and key-derived decrypt); either may be nil, in which case the
// corresponding component is not started and the daemon serves the
// store alone.
type Params struct {
	DataDir  string
	LogLevel string
	Source   ingest.Source
	Decoder  decode.Decoder
}

// Module returns the fx module for the cache daemon, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("mailvault",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideEngine,
			providePipeline,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(paths.LogPath(p.DataDir), p.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := paths.EnsureDir(p.DataDir); err != nil {
		return nil, err
	}
	l, err := lock.Acquire(p.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("data directory lock acquired", zap.String("dir", p.DataDir))
	return l, nil
}

func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := paths.DBPath(p.DataDir)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideEngine(p Params, db *store.DB, b *bus.Bus, logger *zap.Logger) *ingest.Engine {
	if p.Source == nil {
		return nil
	}
	return ingest.NewEngine(db, p.Source, b, logger)
}

func providePipeline(p Params, db *store.DB, b *bus.Bus, logger *zap.Logger) *decode.Pipeline {
	if p.Decoder == nil {
		return nil
	}
	return decode.NewPipeline(db, p.Decoder, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, db *store.DB, engine *ingest.Engine, pipeline *decode.Pipeline, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if engine != nil {
				engine.Start(context.Background())
				logger.Info("ingest engine started")
			} else {
				logger.Info("no message source configured, running store-only")
			}
			if pipeline == nil {
				logger.Info("no decoder configured, decode pipeline disabled")
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			if engine != nil {
				engine.Stop()
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
