// Package app wires the configured storage backends into repositories.
// Both binaries build their services from an App.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stepsurvey/steps-survey/internal/config"
	"github.com/stepsurvey/steps-survey/internal/repository"
	"github.com/stepsurvey/steps-survey/internal/repository/csvstore"
	mongorepo "github.com/stepsurvey/steps-survey/internal/repository/mongo"
	"github.com/stepsurvey/steps-survey/internal/repository/sqlite"
	"github.com/stepsurvey/steps-survey/internal/service"
	"github.com/stepsurvey/steps-survey/internal/storage"
)

// App holds the repositories of one process and whatever they need closed.
type App struct {
	Config    config.Config
	Entries   repository.EntryRepository
	Reference repository.ReferenceRepository

	closers []func() error
	log     *slog.Logger
}

// Open connects the configured backends. Call Close when done.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, log: logger}

	blobs, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Reference = csvstore.NewJSONReferenceRepository(blobs, cfg.Store.ReferenceKey, logger)

	switch cfg.Store.Driver {
	case config.DriverCSV:
		a.Entries = csvstore.NewCSVEntryRepository(blobs, cfg.Store.EntriesKey, logger)
		logger.Info("entry store ready", "driver", cfg.Store.Driver, "backend", cfg.Store.Backend, "key", cfg.Store.EntriesKey)

	case config.DriverMongo:
		client, err := mongorepo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, func() error { return mongorepo.DisconnectDB(client) })
		db := client.Database(cfg.Database.Name)
		mongorepo.EnsureEntryIndexes(ctx, db.Collection(cfg.Database.Collection), logger)
		a.Entries = mongorepo.NewMongoEntryRepository(db, cfg.Database.Collection, logger)
		logger.Info("entry store ready", "driver", cfg.Store.Driver, "database", cfg.Database.Name, "collection", cfg.Database.Collection)

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.Entries = sqlite.NewSQLiteEntryRepository(db, logger)
		logger.Info("entry store ready", "driver", cfg.Store.Driver, "path", cfg.SQLite.Path)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return a, nil
}

func openBlobStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.BlobStore, error) {
	switch cfg.Store.Backend {
	case config.BackendLocal:
		return storage.NewLocalStorage(cfg.Store.DataDir), nil
	case config.BackendS3:
		s, err := storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		logger.Info("using s3 blob store", "bucket", cfg.S3.BucketName, "prefix", cfg.S3.Prefix)
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// SurveyService builds the submission service over the configured entry store.
func (a *App) SurveyService() service.SurveyService {
	return service.NewSurveyService(a.Entries, a.log)
}

// ResultsService builds the results pipeline with the configured threshold and cap.
func (a *App) ResultsService() service.ResultsService {
	return service.NewResultsService(a.Entries, a.Reference, a.Config.Survey.StepThreshold, a.Config.Survey.MaxStepsCap, a.log)
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("failed to close backend", "err", err)
			if first == nil {
				first = err
			}
		}
	}
	a.closers = nil
	return first
}
