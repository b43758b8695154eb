package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"TeleClinic/cache"
	"TeleClinic/config"
	"TeleClinic/database"
	"TeleClinic/utils"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "teleclinic",
		Short:         "Telehealth booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newFixIndexCommand(), newIssueTokenCommand())
	return root
}

// runtime holds the clients every command that touches storage needs.
type runtime struct {
	cfg   *config.AppConfig
	log   *zap.Logger
	db    *gorm.DB
	redis *redis.Client
	cache *cache.Cache
}

func (r *runtime) Close() {
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.log.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = r.log.Sync()
}

func loadRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := utils.NewLogger(cfg.Env)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, log: log}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rt.db, err = database.InitDB(connectCtx, cfg)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt.redis, err = database.NewRedisClient(connectCtx, database.RedisConfigFrom(cfg), log)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	rt.cache, err = cache.NewCache(rt.redis)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return rt, nil
}
