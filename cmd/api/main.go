// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhqingit/voice-food-order/internal/auth"
	"github.com/zhqingit/voice-food-order/internal/config"
	"github.com/zhqingit/voice-food-order/internal/core"
	"github.com/zhqingit/voice-food-order/internal/health"
	"github.com/zhqingit/voice-food-order/internal/menu"
	"github.com/zhqingit/voice-food-order/internal/middleware"
	"github.com/zhqingit/voice-food-order/internal/order"
	"github.com/zhqingit/voice-food-order/internal/ops"
	"github.com/zhqingit/voice-food-order/internal/policy"
	"github.com/zhqingit/voice-food-order/internal/server"
	"github.com/zhqingit/voice-food-order/internal/store"
	"github.com/zhqingit/voice-food-order/internal/user"
	"github.com/zhqingit/voice-food-order/internal/voice"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	codec, err := auth.NewCodec(cfg.Auth)
	if err != nil {
		return err
	}
	logger.Info("access token codec initialized",
		"algorithm", "HS256",
		"access_ttl", cfg.Auth.AccessTokenTTL,
	)

	ledger := auth.NewLedger(auth.NewStore(db.DB), cfg.Auth)

	userSvc := user.NewService(user.NewRepository(db.DB))
	storeSvc := store.NewService(store.NewRepository(db.DB))

	userGateway := auth.NewGateway(auth.GatewayConfig{
		Kind:     auth.KindUser,
		Audience: auth.AudienceMobile,
	}, codec, ledger, userSvc)

	storeGateway := auth.NewGateway(auth.GatewayConfig{
		Kind:          auth.KindStore,
		Audience:      auth.AudienceWeb,
		SingleSession: true,
	}, codec, ledger, storeSvc)

	userAuthHandler := auth.NewUserHandler(userGateway)
	storeAuthHandler := auth.NewStoreHandler(storeGateway, cfg.Auth)
	userHandler := user.NewHandler(userSvc)
	storeHandler := store.NewHandler(storeSvc)

	menuHandler := menu.NewHandler(menu.NewService(menu.NewRepository(db.DB)))
	orderHandler := order.NewHandler(order.NewService(order.NewRepository(db.DB)))

	voiceSvc := voice.NewService(voice.NewRepository(db.DB))
	voiceHandler := voice.NewHandler(voiceSvc)
	voiceSocket := voice.NewSocketHandler(userGateway, voiceSvc, cfg.Voice)

	healthHandler := health.NewHandler(db, redis)

	opsHandler := ops.NewHandler(ops.HandlerConfig{
		Token:      cfg.Ops.Token,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		Janitor:    ledger,
	})

	hosts := policy.NewResolver(cfg.Hosts)
	userPortal := hosts.Require(auth.KindUser, auth.AudienceMobile)
	storePortal := hosts.Require(auth.KindStore, auth.AudienceWeb)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	opsHandler.RegisterRoutes(router)

	router.Route("/user", func(r chi.Router) {
		r.Use(userPortal)

		userAuthHandler.RegisterRoutes(r, auth.Authenticator(userGateway))

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(userGateway))
			userHandler.RegisterRoutes(r)
			orderHandler.RegisterUserRoutes(r)
		})
	})

	router.Route("/store", func(r chi.Router) {
		r.Use(storePortal)

		storeAuthHandler.RegisterRoutes(r, auth.Authenticator(storeGateway))

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(storeGateway))
			storeHandler.RegisterRoutes(r)
			menuHandler.RegisterRoutes(r)
			orderHandler.RegisterStoreRoutes(r)
		})
	})

	router.Route("/voice", func(r chi.Router) {
		r.Use(userPortal)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(userGateway))
			voiceHandler.RegisterRoutes(r)
		})

		// Token gating happens inside the socket handler; the upgrade
		// request carries it in the query string.
		r.Method(http.MethodGet, "/ws", voiceSocket)
	})

	srv := server.New(cfg.Server, router, healthHandler.SetDraining)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
