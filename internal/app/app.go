package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mx-space/content-migrate/internal/config"
	"github.com/mx-space/content-migrate/internal/database"
	"github.com/mx-space/content-migrate/internal/modules/content/document"
	"github.com/mx-space/content-migrate/internal/modules/migration"
	"github.com/mx-space/content-migrate/internal/modules/processing/richtext"
	"github.com/mx-space/content-migrate/internal/modules/storage/assets"
	"github.com/mx-space/content-migrate/internal/modules/storage/objectstore"
	"github.com/mx-space/content-migrate/internal/modules/system/util/slugtracker"
	pkgredis "github.com/mx-space/content-migrate/internal/pkg/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var connectMySQL = database.Connect

// store is what the pipeline and the uploaders need from a backend.
type store interface {
	migration.DocumentStore
	assets.Recorder
}

// App holds the dependencies of one migration run.
type App struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	db    *gorm.DB
	mongo *mongo.Client
	redis *pkgredis.Client

	store   store
	tracker migration.SlugTracker
	fetcher *assets.Fetcher
}

// New initializes the application: config → store → asset uploader → cache.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	a := &App{cfg: cfg, logger: logger}

	if err := a.connectStore(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}

	uploader, err := a.newUploader()
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("assets: %w", err)
	}
	a.fetcher = assets.NewFetcher(uploader, assets.Options{
		MaxBytes:  cfg.Assets.MaxBytes,
		Timeout:   cfg.Assets.Timeout,
		UserAgent: cfg.Source.UserAgent,
		CacheTTL:  cfg.AssetCache.TTL,
	}, logger)

	// dry runs must not remember placeholder ids
	if cfg.AssetCache.Enable && !cfg.DryRun {
		rc, err := pkgredis.Connect(ctx, cfg.AssetCache.Redis.URLValue())
		if err != nil {
			a.Shutdown()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = rc
		a.fetcher.WithCache(rc)
	}

	logger.Info("migration app ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("assets", a.assetBackend()),
		zap.Bool("asset_cache", a.redis != nil),
		zap.Bool("dry_run", cfg.DryRun),
	)
	return a, nil
}

func (a *App) connectStore(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case config.StoreDriverMongo:
		client, err := database.ConnectMongo(ctx, a.cfg.Store.Mongo)
		if err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		a.mongo = client
		db := client.Database(a.cfg.Store.Mongo.Database)
		a.store = document.NewMongoStore(db, a.cfg.Store.Mongo.Collection)
		a.tracker = slugtracker.NewMongoService(db)
	default:
		// dry runs leave the schema alone
		db, err := connectMySQL(a.cfg, !a.cfg.DryRun)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		a.db = db
		docs := document.NewStore(db)
		if a.cfg.DryRun {
			docs = docs.ReadOnly()
		}
		a.store = docs
		a.tracker = slugtracker.NewService(db)
	}
	return nil
}

func (a *App) assetBackend() string {
	if a.cfg.DryRun {
		return "dry-run"
	}
	return a.cfg.Assets.Backend
}

func (a *App) newUploader() (assets.Uploader, error) {
	switch a.assetBackend() {
	case "dry-run":
		return assets.DryRunUploader{}, nil
	case config.AssetBackendGridFS:
		return assets.NewGridFSUploader(a.mongo.Database(a.cfg.Store.Mongo.Database), a.cfg.Store.Mongo.Bucket, a.store)
	case config.AssetBackendS3:
		s3, err := objectstore.NewS3Store(a.cfg.Assets.S3)
		if err != nil {
			return nil, err
		}
		return assets.NewObjectUploader(s3, a.store), nil
	default:
		local, err := objectstore.NewLocalStore(a.cfg.AssetDir(), a.cfg.Assets.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return assets.NewObjectUploader(local, a.store), nil
	}
}

// Converter returns a block converter that uploads images through the
// asset fetcher and resolves relative URLs against siteURL.
func (a *App) Converter(siteURL string) *richtext.Converter {
	return richtext.NewConverter(a.fetcher, a.logger).WithBaseURL(siteURL)
}

// Pipeline builds an upsert pipeline writing into the configured store.
func (a *App) Pipeline(converter migration.BlockConverter, opts migration.Options) *migration.Pipeline {
	opts.DryRun = a.cfg.DryRun
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = a.cfg.Locale
	}
	p := migration.New(a.store, converter, opts, a.logger)
	p.SetSlugTracker(a.tracker)
	return p
}

// Shutdown releases every connection the app opened.
func (a *App) Shutdown() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.logger.Warn("close mongo", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
	}
}
