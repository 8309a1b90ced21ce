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

	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/cache"
	"github.com/Simplici0/posadzki/internal/catalog"
	"github.com/Simplici0/posadzki/internal/config"
	"github.com/Simplici0/posadzki/internal/db"
	"github.com/Simplici0/posadzki/internal/logger"
	"github.com/Simplici0/posadzki/internal/mailer"
	"github.com/Simplici0/posadzki/internal/migrations"
	"github.com/Simplici0/posadzki/internal/notify"
	"github.com/Simplici0/posadzki/internal/quote"
	"github.com/Simplici0/posadzki/internal/seed"
	"github.com/Simplici0/posadzki/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	for _, warning := range cfg.Warnings() {
		zapLogger.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBDSN, db.Options{
		MaxOpenConns:   cfg.DBMaxOpenConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database.DB, database.DriverName()); err != nil {
			zapLogger.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	stats, err := seed.Run(ctx, database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		zapLogger.Fatal("failed to seed database", zap.Error(err))
	}
	zapLogger.Info("seed finished", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	st := store.New(database, zapLogger)

	var (
		catalogCache catalog.Cache
		invalidator  cacheInvalidator
	)
	if cfg.Redis.Addr != "" {
		client, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			c := cache.New(client, cfg.Redis.CatalogTTL)
			catalogCache = c
			invalidator = c
		}
	}
	loader := catalog.NewLoader(st, catalogCache, zapLogger)

	sender, err := newSender(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to init mail provider", zap.Error(err))
	}

	var notifier quote.Notifier
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatIDs, zapLogger)
		if err != nil {
			zapLogger.Warn("telegram unavailable, lead notifications disabled", zap.Error(err))
		} else {
			notifier = tg
		}
	}

	srv := &server{
		logger:   zapLogger,
		store:    st,
		cache:    invalidator,
		exporter: quote.NewExporter(cfg.QuoteCompany(), sender, st, notifier, zapLogger),
		wizards:  newWizardRegistry(loader, cfg.CalculatorBounds(), cfg.SessionTTL),
		auth:     newAuthService(st, cfg.SessionSecret, cfg.SessionTTL),
		timeout:  cfg.HTTPRequestTimeout,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLogger.Info("server shutdown gracefully")
}

// newSender returns nil when email delivery is disabled.
func newSender(ctx context.Context, cfg config.Config, zapLogger *zap.Logger) (mailer.Sender, error) {
	switch cfg.Mail.Provider {
	case config.MailHTTP:
		return mailer.NewHTTP(mailer.HTTPConfig{
			URL:        cfg.Mail.APIURL,
			APIKey:     cfg.Mail.APIKey,
			From:       cfg.Mail.From,
			MaxRetries: cfg.Mail.MaxRetries,
		}, zapLogger), nil
	case config.MailSES:
		ses, err := mailer.NewSES(ctx, cfg.Mail.AWSRegion, cfg.Mail.From, zapLogger)
		if err != nil {
			return nil, err
		}
		return ses, nil
	case config.MailLog:
		return mailer.Log{Logger: zapLogger}, nil
	default:
		return nil, nil
	}
}
