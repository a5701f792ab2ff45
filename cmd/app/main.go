package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "classflow/docs"

	"classflow/internal/booking"
	"classflow/internal/classes"
	"classflow/internal/config"
	"classflow/internal/db"
	"classflow/internal/logger"
	"classflow/internal/member"
	"classflow/internal/notify"
	"classflow/internal/reminder"
	"classflow/internal/server"
	"classflow/internal/subscription"
)

// @title ClassFlow API
// @version 1.0
// @description Class booking, waitlist and subscription engine for a pilates studio.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting ClassFlow application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	policy, err := classes.NewPolicy(
		cfg.StudioTimezone,
		time.Duration(cfg.BookingLockoutMinutes)*time.Minute,
		time.Duration(cfg.CancelNoticeHours)*time.Hour,
	)
	if err != nil {
		logger.Fatalf("Failed to build booking policy: %v", err)
	}

	notifier := notify.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer notifier.Close()
	logger.Info("Notification service initialized")

	memberRepo := member.NewRepository(database)
	classRepo := classes.NewRepository(database)
	subRepo := subscription.NewRepository(database)
	bookingRepo := booking.NewRepository(database)
	reminderRepo := reminder.NewRepository(database)

	reminderLead := time.Duration(cfg.ReminderLeadMinutes) * time.Minute
	scheduler := reminder.NewScheduler(reminderRepo, reminderLead)
	events := booking.Fanout{
		scheduler,
		notify.NewSink(notifier, memberRepo),
	}

	memberService := member.NewService(memberRepo, cfg.JWTSecret)
	classService := classes.NewService(classRepo, policy)
	bookingService := booking.NewService(bookingRepo, classRepo, subRepo, policy, events)

	handlers := server.Handlers{
		Member:       member.NewHandler(memberService),
		Classes:      classes.NewHandler(classService),
		Subscription: subscription.NewHandler(subRepo),
		Booking:      booking.NewHandler(bookingService),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.Start(ctx)
	go reminder.NewWorker(reminderRepo, notifier, time.Minute).Start(ctx)

	srv := server.New(database, cfg, handlers, notifier)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
