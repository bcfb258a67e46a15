package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/suilfg/marketsim/internal/blob/s3"
	"github.com/suilfg/marketsim/internal/config"
	"github.com/suilfg/marketsim/internal/domain"
	"github.com/suilfg/marketsim/internal/persist/memory"
	"github.com/suilfg/marketsim/internal/persist/postgres"
	"github.com/suilfg/marketsim/internal/persist/redis"
)

// Dependencies bundles the infrastructure the application needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	AccountStore domain.AccountStore

	// BlobWriter is nil unless archival is enabled.
	BlobWriter domain.BlobWriter
}

// Wire constructs the concrete infrastructure implementations selected by
// the configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Account store backend ---
	switch strings.ToLower(cfg.Persistence.Backend) {
	case "memory":
		deps.AccountStore = memory.NewAccountStore()

	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.AccountStore = redis.NewAccountStore(redisClient, logger)

	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.AccountStore = postgres.NewAccountStore(pgClient.Pool(), logger)

	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unsupported persistence backend %q", cfg.Persistence.Backend)
	}

	// --- S3 blob storage (only when archival is enabled) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		deps.BlobWriter = s3blob.NewWriter(s3Client)
	}

	return deps, cleanup, nil
}
