// Package app wires configuration into a ready screening service. It is shared
// by the HTTP server and the matchctl CLI.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/Aidin1998/sanctions_matcher/api"
	"github.com/Aidin1998/sanctions_matcher/internal/audit"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/model"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/refdata"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/Aidin1998/sanctions_matcher/internal/config"
	"github.com/Aidin1998/sanctions_matcher/internal/database"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	DB         *gorm.DB
	References *refdata.Store
	// Cache is nil when Redis is disabled.
	Cache   *refdata.CachedSource
	Audit   *audit.Store
	Matcher *screening.Matcher
	Service *screening.Service

	logger  *zap.Logger
	redis   *redis.Client
	closers []io.Closer
}

type options struct {
	skipScoring bool
}

// Option customizes New.
type Option func(*options)

// WithoutScoring connects storage only; Matcher and Service stay nil. Used by
// maintenance commands that must run before a model is deployed.
func WithoutScoring() Option {
	return func(o *options) { o.skipScoring = true }
}

// New connects to every configured backend and loads the model. Any failure
// is returned; a service without its model must not start.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{Config: cfg, logger: logger}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.References = refdata.NewStore(db, logger)
	a.Audit = audit.NewStore(db, logger)

	var source screening.ReferenceSource = a.References
	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = client
		a.closers = append(a.closers, client)
		a.Cache = refdata.NewCachedSource(a.References, client, cfg.Redis.TTL, logger)
		source = a.Cache
	}

	if o.skipScoring {
		return a, nil
	}

	sinks := []audit.Sink{
		{Name: "prediction_log", Logger: a.Audit},
		{Name: "log", Logger: audit.NewLogSink(logger)},
	}
	if cfg.Kafka.Enabled {
		pub := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		a.closers = append(a.closers, pub)
		sinks = append(sinks, audit.Sink{Name: "kafka", Logger: pub})
	}
	auditLog := audit.NewChain(logger, sinks...)

	scoring, err := model.Load(cfg.Model)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load model %s: %w", cfg.Model.Path, err)
	}
	if c, ok := scoring.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	extractor, err := screening.NewFeatureExtractor(cfg.Matching.RatioAlgorithm, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	scorer, err := screening.NewScorer(scoring)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Matcher = screening.NewMatcher(extractor, scorer, cfg.Matching.Workers, logger)
	a.Service = screening.NewService(cfg.Matching.ServiceConfig, a.Matcher, source, auditLog, logger)

	logger.Info("screening service ready",
		zap.String("model", cfg.Model.Path),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("redis_cache", cfg.Redis.Enabled),
		zap.Bool("kafka_stream", cfg.Kafka.Enabled),
		zap.Float64("threshold", cfg.Matching.Threshold),
	)
	return a, nil
}

// Migrate creates or updates every table.
func (a *App) Migrate() error {
	if err := a.References.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate ofac_consolidated: %w", err)
	}
	if err := a.Audit.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate prediction_log: %w", err)
	}
	return nil
}

// InvalidateCache drops reference snapshots; a no-op without Redis.
func (a *App) InvalidateCache(ctx context.Context) error {
	if a.Cache == nil {
		return nil
	}
	return a.Cache.Invalidate(ctx)
}

// HealthChecks returns the dependency probes for the health endpoint.
func (a *App) HealthChecks() map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close releases every connection. It is safe to call on a partially built App.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close component", zap.Error(err))
		}
	}
	a.closers = nil
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
