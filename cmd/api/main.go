package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EstateEmpire/estateempire-backend/config"
	authrepo "github.com/EstateEmpire/estateempire-backend/internal/auth/repository"
	authservice "github.com/EstateEmpire/estateempire-backend/internal/auth/service"
	"github.com/EstateEmpire/estateempire-backend/internal/bootstrap"
	"github.com/EstateEmpire/estateempire-backend/internal/events"
	"github.com/EstateEmpire/estateempire-backend/internal/logging"
	"github.com/EstateEmpire/estateempire-backend/internal/notify"
	"github.com/EstateEmpire/estateempire-backend/internal/payments"
	proprepo "github.com/EstateEmpire/estateempire-backend/internal/properties/repository"
	propservice "github.com/EstateEmpire/estateempire-backend/internal/properties/service"
	"github.com/EstateEmpire/estateempire-backend/internal/scheduler"
	"github.com/EstateEmpire/estateempire-backend/internal/storage/postgres"
	txrepo "github.com/EstateEmpire/estateempire-backend/internal/transactions/repository"
	txservice "github.com/EstateEmpire/estateempire-backend/internal/transactions/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().WithError(err).Fatal("failed to load config")
	}

	logging.Init(cfg.App.ServiceName, cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.App.Environment)
	log := logging.L()

	ctx := context.Background()

	if err := runMigrations(ctx, &cfg.Database); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.ConnString(),
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer rdb.Close()

	publisher := newPublisher(cfg)
	defer publisher.Close()

	// Repositories
	users := authrepo.NewUserRepository(db)
	codes := authrepo.NewCodeRepository(db)
	limits := authrepo.NewRateLimitRepository(rdb)
	revocations := authrepo.NewRevocationRepository(rdb)
	properties := proprepo.NewPropertyRepository(db)
	listingCache := proprepo.NewListingCache(rdb, 0)
	transactions := txrepo.NewTransactionRepository(db)

	// Services
	tokens, err := authservice.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("failed to create token service")
	}
	authSvc := authservice.NewAuthService(authservice.Deps{
		Users:       users,
		Codes:       codes,
		Revocations: revocations,
		Tokens:      tokens,
		Limiter: authservice.NewRateLimiterService(limits, authservice.RateLimits{
			EmailPerHour:   cfg.Auth.EmailLimitPerHour,
			LoginPerMinute: cfg.Auth.LoginLimitPerMinute,
		}),
		Mailer:    newMailer(cfg),
		Publisher: publisher,
	}, authservice.Config{
		CodeTTL:         cfg.Auth.VerificationCodeTTL,
		CodeLength:      cfg.Auth.VerificationCodeLength,
		MaxCodeAttempts: cfg.Auth.VerificationMaxAttempts,
	})

	propertySvc := propservice.NewPropertyService(properties, listingCache, publisher)

	txSvc := txservice.NewTransactionService(txservice.Deps{
		Repo:      transactions,
		Listings:  propertySvc,
		Gateway:   payments.NewSandboxGateway(cfg.Payments.Shortcode),
		SMS:       newSMSSender(cfg),
		Publisher: publisher,
	}, time.Duration(cfg.App.RentPeriodDays)*24*time.Hour)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DB:             db,
		Redis:          rdb,
		Auth:           authSvc,
		Properties:     propertySvc,
		Transactions:   txSvc,
	})

	var cron *scheduler.Scheduler
	if cfg.App.CronEnabled {
		cron = scheduler.NewScheduler(authSvc, txSvc)
		if err := cron.Start(); err != nil {
			log.WithError(err).Fatal("failed to start scheduler")
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http server shutdown failed")
	}
	if cron != nil {
		cron.Stop(shutdownCtx)
	}
}

func runMigrations(ctx context.Context, dbCfg *config.DatabaseConfig) error {
	applied, err := postgres.MigrateURL(ctx, dbCfg.ConnString())
	if err != nil {
		return err
	}
	logging.L().WithField("applied", applied).Info("database migrations complete")
	return nil
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.Broker.URL == "" {
		logging.L().Info("RABBITMQ_URL not set, events are logged only")
		return events.NewLogPublisher()
	}
	p, err := events.NewRabbitPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		logging.L().WithError(err).Warn("rabbitmq unavailable, events are logged only")
		return events.NewLogPublisher()
	}
	return p
}

func newMailer(cfg *config.Config) notify.EmailSender {
	if cfg.Mail.SendGridAPIKey == "" {
		logging.L().Info("SENDGRID_API_KEY not set, verification codes are logged")
		return notify.LogEmailSender{}
	}
	return notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.Mail.SendGridAPIKey,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  cfg.Mail.FromName,
		Sandbox:   cfg.Mail.Sandbox,
		CodeTTL:   cfg.Auth.VerificationCodeTTL,
	})
}

func newSMSSender(cfg *config.Config) notify.SMSSender {
	if cfg.SMS.TwilioAccountSID == "" || cfg.SMS.TwilioAuthToken == "" {
		logging.L().Info("Twilio credentials not set, sms receipts are logged")
		return notify.LogSMSSender{}
	}
	return notify.NewTwilioSender(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.FromPhone)
}
