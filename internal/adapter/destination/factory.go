// Package destination constructs concrete sinks from declarative
// configuration.
package destination

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/quillsec/privlog/internal/adapter/destination/file"
	"github.com/quillsec/privlog/internal/adapter/destination/memory"
	pgdest "github.com/quillsec/privlog/internal/adapter/destination/postgres"
	"github.com/quillsec/privlog/internal/adapter/destination/redisstream"
	"github.com/quillsec/privlog/internal/domain"
)

// Dependencies carries the shared connections a factory-built destination
// may need. Fields are nil when the deployment does not configure them.
type Dependencies struct {
	DB     *sql.DB
	Redis  *redis.Client
	Logger *slog.Logger
}

// New builds the destination described by cfg.Parameters["type"]. The
// remaining parameters are driver-specific:
//
//	file:     directory (required)
//	postgres: table (default "log_entries")
//	redis:    stream (default "privlog_entries")
func New(cfg domain.DestinationConfig, deps Dependencies) (domain.Destination, error) {
	policy := domain.RetentionPolicy{RotationStrategy: domain.RotationNone}
	if cfg.RetentionPolicy != nil {
		policy = *cfg.RetentionPolicy
	}

	switch kind := cfg.Parameters["type"]; kind {
	case "memory":
		return memory.New(cfg.Identifier, cfg.MinimumLevel, policy), nil

	case "file":
		dir := cfg.Parameters["directory"]
		if dir == "" {
			return nil, fmt.Errorf("%w: file destination %s has no directory parameter",
				domain.ErrInvalidConfiguration, cfg.Identifier)
		}
		return file.New(cfg.Identifier, cfg.MinimumLevel, policy, dir, deps.Logger)

	case "postgres":
		if deps.DB == nil {
			return nil, fmt.Errorf("%w: postgres destination %s configured without POSTGRES_URL",
				domain.ErrInitializationFailed, cfg.Identifier)
		}
		table := cfg.Parameters["table"]
		if table == "" {
			table = "log_entries"
		}
		return pgdest.New(deps.DB, cfg.Identifier, cfg.MinimumLevel, table, deps.Logger), nil

	case "redis":
		if deps.Redis == nil {
			return nil, fmt.Errorf("%w: redis destination %s configured without REDIS_ADDR",
				domain.ErrInitializationFailed, cfg.Identifier)
		}
		return redisstream.New(deps.Redis, cfg.Identifier, cfg.MinimumLevel,
			cfg.Parameters["stream"], policy, deps.Logger), nil

	default:
		return nil, fmt.Errorf("%w: unknown destination type %q for %s",
			domain.ErrInvalidConfiguration, kind, cfg.Identifier)
	}
}
