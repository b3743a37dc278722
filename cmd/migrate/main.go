package main

import (
	"context"
	"flag"
	"os"

	"github.com/damoang/angple-messenger/internal/config"
	"github.com/damoang/angple-messenger/internal/database"
	"github.com/damoang/angple-messenger/internal/migration"
	"github.com/damoang/angple-messenger/internal/repository"
	"github.com/damoang/angple-messenger/internal/service"
	pkgcache "github.com/damoang/angple-messenger/pkg/cache"
	pkglogger "github.com/damoang/angple-messenger/pkg/logger"
	pkgredis "github.com/damoang/angple-messenger/pkg/redis"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	seed := flag.Bool("seed", false, "upsert development members after migrating")
	flag.Parse()

	files := config.LoadDotEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		pkglogger.GetLogger().Fatal().Err(err).Str("config", *configPath).Msg("failed to load config")
	}
	pkglogger.InitStructured(cfg.Server.Env, cfg.Server.LogLevel)
	log := pkglogger.WithComponent("migrate")
	log.Info().Strs("env_files", files).Str("driver", cfg.Database.Driver).Msg("migrating")

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get underlying DB")
	}
	defer sqlDB.Close()

	if err := migration.Run(db); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
	log.Info().Int("tables", len(migration.Models())).Msg("schema up to date")

	if *seed {
		if !cfg.IsDevelopment() {
			log.Error().Str("env", cfg.Server.Env).Msg("refusing to seed outside a development environment")
			os.Exit(1)
		}
		ctx := context.Background()

		// a running API may hold cached summaries of the seeded members
		var redisClient *redis.Client
		if cfg.Redis.Enabled {
			redisClient, err = pkgredis.NewClient(ctx, pkgredis.Config{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				PoolSize: cfg.Redis.PoolSize,
			})
			if err != nil {
				log.Warn().Err(err).Msg("redis unavailable, cached user summaries expire on their own")
				redisClient = nil
			} else {
				defer redisClient.Close()
			}
		}
		memberService := service.NewMemberService(
			repository.NewMemberRepository(db),
			pkgcache.NewService(redisClient, cfg.Messaging.UserSummaryTTL),
		)

		members := migration.DevMembers()
		if err := migration.SeedMembers(ctx, memberService, members); err != nil {
			log.Error().Err(err).Msg("seed failed")
			os.Exit(1)
		}
		log.Info().Int("members", len(members)).Msg("development members seeded")
	}
}
