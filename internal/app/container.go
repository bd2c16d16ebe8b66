// Package app assembles repositories and services from configuration so the
// HTTP server and the campctl CLI share one wiring.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/youth-camp-api/internal/repository"
	"github.com/noah-isme/youth-camp-api/internal/service"
	"github.com/noah-isme/youth-camp-api/pkg/cache"
	"github.com/noah-isme/youth-camp-api/pkg/config"
	"github.com/noah-isme/youth-camp-api/pkg/database"
)

// Container holds the shared dependencies.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	Metrics *service.MetricsService
	Cache   *service.CacheService

	Users         *repository.UserRepository
	Editions      *service.EditionService
	Registrations *service.RegistrationService
	Orders        *service.TShirtOrderService
	Reconciler    *service.ReconciliationService
	Exports       *service.ExportService
	Auth          *service.AuthService
}

// New opens Postgres (and Redis when caching is enabled) and builds every service.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logger, cfg.Cache.Enabled)
	validate := service.NewValidator()

	registrationRepo := repository.NewRegistrationRepository(db)
	editionRepo := repository.NewEditionRepository(db)
	orderRepo := repository.NewTShirtOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	editions := service.NewEditionService(editionRepo, registrationRepo, cacheSvc, validate, logger)
	registrations := service.NewRegistrationService(registrationRepo, repository.NewParticipantIDRepository(db), editionRepo, cacheSvc, metrics, validate, logger)
	orders := service.NewTShirtOrderService(orderRepo, registrationRepo, editionRepo, validate, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		Redis:         redisClient,
		Metrics:       metrics,
		Cache:         cacheSvc,
		Users:         userRepo,
		Editions:      editions,
		Registrations: registrations,
		Orders:        orders,
		Reconciler:    service.NewReconciliationService(orders, metrics, logger),
		Exports:       service.NewExportService(registrations, orders, nil, logger),
		Auth: service.NewAuthService(userRepo, validate, logger, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
	}, nil
}

// Close releases the database and Redis connections.
func (c *Container) Close() error {
	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			firstErr = fmt.Errorf("close redis: %w", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close postgres: %w", err)
		}
	}
	return firstErr
}

// RedisPinger adapts a Redis client to a PingContext check.
type RedisPinger struct {
	Client *redis.Client
}

// PingContext pings Redis.
func (p RedisPinger) PingContext(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
