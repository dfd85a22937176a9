// Command api serves the users REST API.
//
//	@title						Users API
//	@version					1.0
//	@description				User management service: login with bearer tokens, role-based access and CRUD over users.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the token.
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

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aueb-cf/users-api/internal/api"
	"github.com/aueb-cf/users-api/internal/api/handler"
	"github.com/aueb-cf/users-api/internal/core/domain"
	"github.com/aueb-cf/users-api/internal/core/ports"
	"github.com/aueb-cf/users-api/internal/core/service"
	mongodb "github.com/aueb-cf/users-api/internal/infrastructure/db/mongo"
	redisdb "github.com/aueb-cf/users-api/internal/infrastructure/db/redis"
	"github.com/aueb-cf/users-api/internal/infrastructure/security"
	"github.com/aueb-cf/users-api/internal/pkg/config"
	"github.com/aueb-cf/users-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "users-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		Timeout:     cfg.Mongo.Timeout,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
	}

	// --- Redis (optional) ---
	var cache ports.UserCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		cache = redisdb.NewUserCache(rdb, cfg.Redis.CacheTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("user cache enabled")
	} else {
		log.Info().Msg("REDIS_ADDR not set, user cache disabled")
	}

	// --- Services ---
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewJWTManager(cfg.JWTSecret)

	userService := service.NewUserService(userRepo, hasher, cache, logger.Component("user_service"))
	authService := service.NewAuthService(userRepo, hasher, tokens, logger.Component("auth_service"))

	if err := seedAdmin(ctx, cfg.Admin, userService); err != nil {
		return err
	}

	router := api.NewRouter(api.Dependencies{
		Auth:             authService,
		Users:            userService,
		Verifier:         tokens,
		Logger:           log,
		TokenTTL:         security.TokenTTL,
		ReadinessChecks:  checks,
		CORSAllowOrigins: cfg.CORSOrigins,
		RequestTimeout:   cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErrors:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	log.Info().Msg("http server stopped")
	return nil
}

// seedAdmin creates the configured ADMIN account unless it already exists.
func seedAdmin(ctx context.Context, admin config.AdminConfig, users *service.UserService) error {
	if admin.Username == "" {
		return nil
	}

	created, err := users.EnsureUser(ctx, ports.CreateUserInput{
		Username: admin.Username,
		Password: admin.Password,
		Email:    admin.Email,
		Roles:    []string{domain.RoleAdmin},
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		seedLog := logger.Get()
		seedLog.Info().Str("username", admin.Username).Msg("admin user seeded")
	}
	return nil
}

