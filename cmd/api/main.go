package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-gateway/internal/config"
	"crm-gateway/internal/events"
	"crm-gateway/internal/flows"
	"crm-gateway/internal/httpapi"
	"crm-gateway/internal/status"
	"crm-gateway/internal/telephony"
	"crm-gateway/pkg/logger"
	"crm-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Explicit dependency wiring; no ambient singletons.
	deliveryLog := events.NewService(events.NewPostgresRepo(db))
	reconciler := status.NewService(status.NewPostgresRepo(db), deliveryLog, status.NewRedisClaims(rdb))

	webhooks := telephony.WebhookHandlers{
		Initiator:     telephony.NewTwilioClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, 0),
		Reconciler:    reconciler,
		CallerID:      cfg.Twilio.CallerID,
		BridgeBaseURL: cfg.Gateway.BridgeBaseURL,
		OpeningScript: cfg.Gateway.OpeningScript,
	}
	api := httpapi.Handlers{Flows: flows.NewService(flows.NewPostgresRepo(db))}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, cfg, webhooks, api, db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("gateway listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
