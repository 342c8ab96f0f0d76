package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"workspace-identity/internal/config"
	"workspace-identity/pkg/logger"
	"workspace-identity/pkg/utils"
)

type Globals struct {
	Debug   bool
	Version string
}

// loadConfig reads the same environment as the API process.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	return config.Load()
}

// newLogger builds the process logger, installs it as the slog default and
// attaches it to ctx.
func newLogger(ctx context.Context, cfg config.Config, globals *Globals) (context.Context, *slog.Logger) {
	env := cfg.App.Env
	if globals.Debug {
		env = "local"
	}
	l := logger.New(env)
	slog.SetDefault(l)
	return logger.With(ctx, l), l
}

func openPostgres(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password})
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}
	return rdb, nil
}
