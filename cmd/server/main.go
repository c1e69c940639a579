// @title       Yatube API
// @version     1.0
// @description JSON endpoints of the Yatube blog.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/api"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/auth"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/pkg/logger"
	"github.com/d60-Lab/yatube/pkg/tracing"
	"github.com/d60-Lab/yatube/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	var store cache.Store
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		store = cache.NewRedisStore(rdb)
		logger.Info("page cache backed by redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		store = cache.NewMemoryStore()
		logger.Info("page cache backed by process memory")
	}

	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	userSvc := service.NewUserService(userRepo)
	storage := media.NewStorage(cfg.Server.MediaDir, cfg.Server.MediaURL)
	views, err := handler.NewRenderer(web.Templates, storage.URL)
	if err != nil {
		return err
	}

	h := handler.New(handler.Deps{
		Feed:      service.NewFeedService(postRepo, groupRepo, userRepo, cfg.Feed.PageSize),
		Posts:     service.NewPostService(postRepo, groupRepo),
		Comments:  service.NewCommentService(commentRepo, postRepo),
		Relations: service.NewRelationshipService(followRepo, postRepo, cfg.Feed.PageSize),
		Users:     userSvc,
		Groups:    service.NewGroupService(groupRepo),
		Pages:     cache.NewPageCache(store),
		Media:     storage,
		Tokens:    tokens,
		Views:     views,
		DB:        sqlDB,
		Options: handler.Options{
			IndexKey:     cfg.Cache.IndexKey,
			IndexTTL:     cfg.Cache.IndexTTL,
			LoginURL:     cfg.Server.LoginURL,
			CookieName:   cfg.JWT.CookieName,
			CookieSecure: cfg.JWT.CookieSecure,
		},
	})
	router := api.NewRouter(cfg, h, middleware.LoadUser(tokens, userSvc, cfg.JWT.CookieName))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("media_dir", storage.Root()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server stopped gracefully")
	}
	return nil
}
