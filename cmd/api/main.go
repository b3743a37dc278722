package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/damoang/angple-messenger/internal/config"
	"github.com/damoang/angple-messenger/internal/database"
	"github.com/damoang/angple-messenger/internal/handler"
	"github.com/damoang/angple-messenger/internal/middleware"
	"github.com/damoang/angple-messenger/internal/migration"
	"github.com/damoang/angple-messenger/internal/notify"
	"github.com/damoang/angple-messenger/internal/repository"
	"github.com/damoang/angple-messenger/internal/routes"
	"github.com/damoang/angple-messenger/internal/service"
	"github.com/damoang/angple-messenger/internal/ws"
	pkgcache "github.com/damoang/angple-messenger/pkg/cache"
	"github.com/damoang/angple-messenger/pkg/jwt"
	pkglogger "github.com/damoang/angple-messenger/pkg/logger"
	pkgredis "github.com/damoang/angple-messenger/pkg/redis"
	pkgstorage "github.com/damoang/angple-messenger/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title           Angple Messenger API
// @version         1.0
// @description     Direct messages between members
//
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		// logger is not configured yet
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	pkglogger.InitStructured(cfg.Server.Env, cfg.Server.LogLevel)
	log := pkglogger.GetLogger()
	log.Info().Strs("env_files", dotenvFiles).Msg("starting angple-messenger")
	config.LogResolved(cfg)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config) error {
	log := pkglogger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := migration.Run(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Redis 연결 (선택)
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
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache, rate limit and cross-instance hints")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var uploader pkgstorage.Uploader
	if cfg.Storage.Enabled {
		s3Client, err := pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		uploader = s3Client
	}

	hub := ws.NewHub(redisClient)
	go hub.Run()
	defer hub.Stop()

	// Repositories
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	cacheService := pkgcache.NewService(redisClient, cfg.Messaging.UserSummaryTTL)
	memberService := service.NewMemberService(memberRepo, cacheService)

	dispatcher := notify.NewDispatcher(notify.Config{
		Workers:   cfg.Messaging.NotifyWorkers,
		QueueSize: cfg.Messaging.NotifyQueueSize,
		Timeout:   cfg.Messaging.NotifyTimeout,
		Directory: memberService,
	}, notify.NewInboxSink(notificationRepo), notify.NewPushSink(hub))

	conversationService := service.NewConversationService(convRepo, msgRepo, memberService)
	messageService := service.NewMessageService(msgRepo, convRepo, reactionRepo,
		conversationService, dispatcher, hub,
		service.MessageOptions{
			MaxContentLength: cfg.Messaging.MaxContentLength,
			DeepLinkBase:     cfg.Messaging.DeepLinkBase,
		})
	notificationService := service.NewNotificationService(notificationRepo)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())
	if !cfg.IsDevelopment() {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	routes.Setup(router, routes.Handlers{
		Conversation: handler.NewConversationHandler(conversationService),
		Message:      handler.NewMessageHandler(messageService),
		Attachment:   handler.NewAttachmentHandler(uploader, cfg.Storage.MaxUploadBytes),
		Member:       handler.NewMemberHandler(memberService),
		Notification: handler.NewNotificationHandler(notificationService),
		WS:           handler.NewWSHandler(hub, cfg.CORS.AllowOrigins),
		Health:       handler.NewHealthHandler(db, redisClient),
	}, jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn), routes.Options{
		RedisClient:            redisClient,
		SendRateLimitPerMinute: cfg.Messaging.SendRateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	// requests are drained, so no new notifications can arrive
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notification queue not fully drained")
	}
	return nil
}

func corsConfig(allowOrigins string) cors.Config {
	origins := splitAndTrim(allowOrigins)
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:           12 * time.Hour,
	}
}

func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
