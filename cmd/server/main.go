package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/tool-maintenance/internal/alerts"
	"github.com/ukydev/tool-maintenance/internal/auth"
	"github.com/ukydev/tool-maintenance/internal/config"
	"github.com/ukydev/tool-maintenance/internal/db"
	"github.com/ukydev/tool-maintenance/internal/handlers"
	"github.com/ukydev/tool-maintenance/internal/middleware"
	"github.com/ukydev/tool-maintenance/internal/recommend"
	"github.com/ukydev/tool-maintenance/internal/risk"
	"github.com/ukydev/tool-maintenance/internal/scanner"
	"github.com/ukydev/tool-maintenance/internal/scoring"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	cfg := config.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("connected to MongoDB")

	database := client.Database(cfg.MongoDatabase)
	store := db.NewMongoStore(database)
	if err := store.EnsureIndexes(context.Background()); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}

	// Start from persisted model state when available, untrained otherwise.
	model := risk.NewModel()
	if state, err := risk.LoadState(cfg.ModelPath); err == nil {
		model = risk.NewModelWithState(state)
		log.WithField("trained_at", state.TrainedAt).Info("loaded persisted model state")
	} else if !os.IsNotExist(err) {
		log.WithError(err).Warn("could not load model state, starting untrained")
	}

	urgency := recommend.UrgencyConfig{
		LeadDays:         cfg.MaintenanceLeadDays,
		UrgentWithinDays: cfg.UrgentWithinDays,
	}

	var alerter scoring.Alerter
	if cfg.SMTPURL != "" && len(cfg.NotificationEmails) > 0 {
		notifier, err := alerts.NewShoutrrrNotifier(cfg.SMTPURL, cfg.NotificationEmails)
		if err != nil {
			log.WithError(err).Fatal("failed to configure notifier")
		}
		alerter = alerts.NewService(notifier, cfg.CompanyName, urgency)
	} else {
		log.Warn("notifications disabled, SMTP_URL or NOTIFICATION_EMAILS not set")
	}

	service := scoring.NewService(store, model, alerter, cfg.ModelPath, cfg.MaintenanceLeadDays)

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}
	authMW := middleware.NewAuthMiddleware(authService)
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	router := handlers.NewRouter(
		handlers.NewAuthHandler(authService, users),
		handlers.NewToolHandler(store),
		handlers.NewMaintenanceHandler(store, urgency),
		handlers.NewPredictionHandler(store, model, service),
		authMW,
	)
	rateLimiter := middleware.NewRateLimitMiddleware()
	handler := rateLimiter.RateLimit(300, 60)(router)

	// Batch jobs.
	scheduler := cron.New()
	schedule(scheduler, cfg.TrainingSchedule, "training", func(ctx context.Context) error {
		_, err := service.RunTraining(ctx)
		if errors.Is(err, risk.ErrInsufficientData) {
			// Already logged as a warning, the previous model stays active.
			return nil
		}
		return err
	})
	schedule(scheduler, cfg.ScoringSchedule, "scoring", func(ctx context.Context) error {
		_, err := service.RunScoring(ctx)
		return err
	})
	schedule(scheduler, cfg.DueCheckSchedule, "due-check", func(ctx context.Context) error {
		_, err := service.RunDueCheck(ctx)
		return err
	})
	scheduler.Start()
	defer scheduler.Stop()

	// Scan ingest.
	if cfg.MQTTBroker != "" {
		listener := scanner.NewListener(store, cfg.MQTTBroker, cfg.MQTTClientID, cfg.ScanTopic)
		if err := listener.Start(); err != nil {
			log.WithError(err).Error("failed to start scan listener, continuing without it")
		} else {
			defer listener.Stop()
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func schedule(scheduler *cron.Cron, spec, name string, job func(context.Context) error) {
	if spec == "" {
		log.WithField("job", name).Info("schedule empty, job disabled")
		return
	}
	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := job(ctx); err != nil {
			log.WithError(err).WithField("job", name).Error("scheduled job failed")
		}
	})
	if err != nil {
		log.WithError(err).WithField("job", name).Fatal("invalid cron schedule")
	}
}
