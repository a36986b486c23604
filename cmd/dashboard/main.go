// @title        Ticket dashboard gateway
// @version      1.0
// @description  Session-holding gateway between the support dashboard and the ticketing backend.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ticketdesk/dashboard/docs"
	"github.com/ticketdesk/dashboard/internal/api"
	"github.com/ticketdesk/dashboard/internal/api/middleware"
	"github.com/ticketdesk/dashboard/internal/api/workspace"
	"github.com/ticketdesk/dashboard/internal/core/ports"
	"github.com/ticketdesk/dashboard/internal/infrastructure/backend"
	"github.com/ticketdesk/dashboard/internal/infrastructure/db/memory"
	mongostore "github.com/ticketdesk/dashboard/internal/infrastructure/db/mongo"
	redisstore "github.com/ticketdesk/dashboard/internal/infrastructure/db/redis"
	"github.com/ticketdesk/dashboard/internal/infrastructure/http/handlers"
	"github.com/ticketdesk/dashboard/internal/infrastructure/queue"
	"github.com/ticketdesk/dashboard/internal/pkg/config"
	"github.com/ticketdesk/dashboard/pkg/logger"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "dashboard",
		Version: version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, checkers, closeStore, err := openTokenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Session.Store).Msg("token store unavailable")
	}
	defer closeStore()

	client, err := backend.NewClient(backend.ClientConfig{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Logger:  log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("backend client")
	}
	checkers = append(checkers, client)

	refresher := queue.NewDispatcher(cfg.Cache.RefreshWorkers, logger.WithComponent("refresh"))
	refresher.Start(ctx)

	workspaces := workspace.NewManager(workspace.Config{
		Client:     client,
		Tokens:     tokens,
		Scheduler:  refresher,
		TokenTTL:   cfg.Session.TTL,
		StaleAfter: cfg.Cache.StaleAfter,
		IdleTTL:    cfg.Session.IdleTTL,
		Logger:     log,
	})
	go workspaces.Run(ctx)

	e := api.NewRouter(api.Deps{
		Workspaces: workspaces,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.Cookie,
			Secure: cfg.IsProduction(),
			MaxAge: cfg.Session.TTL,
		},
		Limiter:        middleware.NewRateLimiter(cfg.HTTP.LoginRatePerMinute, cfg.HTTP.LoginRateBurst),
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Checkers:       checkers,
		Swagger:        !cfg.IsProduction(),
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("backend", cfg.Backend.BaseURL).Str("store", cfg.Session.Store).Msg("dashboard gateway listening")
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("stopped")
}

// openTokenStore connects the configured token store and returns its health
// checker and a close func.
func openTokenStore(ctx context.Context, cfg *config.Config) (ports.TokenStore, []handlers.Checker, func(), error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return redisstore.NewTokenStore(rdb),
			[]handlers.Checker{redisstore.NewChecker(rdb)},
			func() { _ = rdb.Close() },
			nil

	case config.StoreMongo:
		mc, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return mongostore.NewTokenStore(db),
			[]handlers.Checker{mongostore.NewChecker(db)},
			func() {
				dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mc.Disconnect(dctx)
			},
			nil

	default:
		tokensLog := logger.WithComponent("tokens")
		tokensLog.Warn().Msg("using the in-memory token store; sessions are lost on restart")
		return memory.NewTokenStore(), nil, func() {}, nil
	}
}
