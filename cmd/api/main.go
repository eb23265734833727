package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OktaWirawan/anitasalonn/internal/auth"
	"github.com/OktaWirawan/anitasalonn/internal/cache"
	"github.com/OktaWirawan/anitasalonn/internal/config"
	"github.com/OktaWirawan/anitasalonn/internal/handlers"
	"github.com/OktaWirawan/anitasalonn/internal/models"
	"github.com/OktaWirawan/anitasalonn/internal/notifications"
	"github.com/OktaWirawan/anitasalonn/internal/store"
	"github.com/OktaWirawan/anitasalonn/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st, err := store.Open(cfg.DataDir, logger, models.Definitions()...)
	if err != nil {
		logger.Error("store open failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("store opened", slog.String("dir", cfg.DataDir))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:    []byte(cfg.JWTSecret),
			AccessTTL: time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			Issuer:    "anitasalon",
		}
		logger.Info("jwt auth enabled")
	} else {
		logger.Warn("jwt auth disabled, dashboard writes are open")
	}

	var mailer handlers.BookingMailer
	if bc := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox); bc != nil {
		mailer = bc
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	} else {
		logger.Info("brevo mailer disabled")
	}

	server := &handlers.Server{
		Cfg:    cfg,
		Store:  st,
		Val:    validation.New(),
		Log:    logger,
		Cache:  cacheStore,
		JWT:    jwtManager,
		Mailer: mailer,
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: server.Routes(),
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
