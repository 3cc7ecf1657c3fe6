package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/yla-umzug/quotes-service/internal/auth"
	"github.com/yla-umzug/quotes-service/internal/cache"
	"github.com/yla-umzug/quotes-service/internal/config"
	"github.com/yla-umzug/quotes-service/internal/db"
	"github.com/yla-umzug/quotes-service/internal/distance"
	"github.com/yla-umzug/quotes-service/internal/excel"
	httphandler "github.com/yla-umzug/quotes-service/internal/http"
	"github.com/yla-umzug/quotes-service/internal/http/middleware"
	"github.com/yla-umzug/quotes-service/internal/logger"
	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/notify"
	"github.com/yla-umzug/quotes-service/internal/pdf"
	"github.com/yla-umzug/quotes-service/internal/pricing"
	"github.com/yla-umzug/quotes-service/internal/repository"
	"github.com/yla-umzug/quotes-service/internal/service"
	"github.com/yla-umzug/quotes-service/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	scheduler := cron.New()
	appCache := newCache(ctx, cfg, scheduler, log)

	settingRepo := repository.NewSettingRepository(database)
	serviceRepo := repository.NewServiceRepository(database)
	ruleRepo := repository.NewPricingRuleRepository(database)
	quoteRepo := repository.NewQuoteRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)

	store := settings.NewStore(settingRepo, appCache, cfg.Cache.SettingsTTL, log)
	estimator := distance.NewEstimator(
		distance.NewORSClient(cfg.Distance.APIURL, cfg.Distance.APIKey, cfg.Distance.Timeout),
		appCache,
		log,
	)

	pricer := pricing.NewService(store,
		pricing.NewDiscountCalculator(store),
		pricing.NewRuleEngine(ruleRepo, log),
		log,
		pricing.NewMovingCalculator(store, estimator, log),
		pricing.NewCleaningCalculator(store),
		pricing.NewDeclutterCalculator(store),
	)

	channels := notify.Channels{Mail: notify.NewMailer(cfg.Mail)}
	if sender := notify.NewWhatsAppSender(cfg.WhatsApp, log); sender != nil {
		channels.WhatsApp = sender
	}

	quoteService := service.NewQuoteService(
		quoteRepo,
		notificationRepo,
		pricer,
		estimator,
		pdf.NewGenerator(),
		excel.NewGenerator(),
		channels,
		store,
		service.QuoteServiceConfig{
			Company: model.CompanyInfo{
				Name:    cfg.Company.Name,
				Address: cfg.Company.Address,
				Phone:   cfg.Company.Phone,
				Email:   cfg.Company.Email,
			},
			AdminEmail: cfg.Mail.AdminEmail,
		},
		log,
	)
	calculatorService := service.NewCalculatorService(pricer, serviceRepo, estimator)
	adminService := service.NewAdminService(serviceRepo, ruleRepo, store)

	dispatcher := notify.NewDispatcher(notificationRepo, quoteService, notify.DispatcherOptions{
		Schedule:    cfg.Notify.Schedule,
		BatchSize:   cfg.Notify.BatchSize,
		MaxAttempts: cfg.Notify.MaxAttempts,
	}, log)
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start notification dispatcher")
	}
	scheduler.Start()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(quoteService, calculatorService, adminService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, httphandler.RouterConfig{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Info().Str("addr", addr).Msg("starting quotes service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	dispatcher.Stop(shutdownCtx)
	<-scheduler.Stop().Done()

	if closer, ok := appCache.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newCache prefers Redis when configured. The in-memory cache is purged of
// expired entries by the scheduler.
func newCache(ctx context.Context, cfg *config.Config, scheduler *cron.Cron, log zerolog.Logger) cache.Cache {
	if cfg.Cache.RedisURL != "" {
		client, err := cache.NewRedis(ctx, cfg.Cache.RedisURL, "quotes:")
		if err == nil {
			log.Info().Msg("using redis cache")
			return client
		}
		log.Warn().Err(err).Msg("redis unavailable, falling back to memory cache")
	}

	memory := cache.NewMemory()
	if _, err := scheduler.AddFunc("@every 10m", func() {
		if n := memory.Purge(); n > 0 {
			log.Debug().Int("entries", n).Msg("purged expired cache entries")
		}
	}); err != nil {
		log.Warn().Err(err).Msg("failed to schedule cache purge")
	}
	return memory
}
