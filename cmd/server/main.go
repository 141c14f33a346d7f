package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "packbooker-backend/internal/api/http"
	"packbooker-backend/internal/config"
	"packbooker-backend/internal/jobs"
	"packbooker-backend/internal/logger"
	"packbooker-backend/internal/payments"
	"packbooker-backend/internal/repository/postgres"
	"packbooker-backend/internal/security"
	"packbooker-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Local .env overrides, ignored when absent
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PackBooker Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "host", cfg.Server.Host, "port", cfg.Server.Port, "base_url", cfg.Server.BaseURL)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Payment Gateway
	gateway, err := payments.NewMercadoPagoGateway(cfg.Payment.AccessToken, cfg.Payment.Mock)
	if err != nil {
		logger.Error("Failed to initialize payment gateway", "error", err)
		log.Fatalf("Failed to initialize payment gateway: %v", err)
	}

	// Initialize Services
	tokenIssuer := security.NewTokenIssuer(cfg.Booking.TokenTTLDays)
	emailSvc := service.NewSendGridEmailService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		cfg.Server.BaseURL,
	)
	requestSvc := service.NewRequestService(
		store.RequestRepository,
		store.ReservationRepository,
		tokenIssuer,
		emailSvc,
		cfg.Booking.DepositRate,
	)
	reservationSvc := service.NewReservationService(
		store.ReservationRepository,
		store.OrderRepository,
		emailSvc,
		cfg.Booking.DepositRate,
	)
	paymentSvc := service.NewPaymentService(
		store.ReservationRepository,
		store.OrderRepository,
		store.ProductRepository,
		gateway,
		emailSvc,
		cfg.Server.BaseURL,
		cfg.Payment.Currency,
		cfg.Booking.BalanceDueOffsetDays,
	)
	documentSvc := service.NewDocumentService(store.ReservationRepository, store.OrderRepository, nil)
	catalogSvc := service.NewCatalogService(store.ProductRepository)

	// Job runner backs the HTTP trigger endpoints
	jobRunner := jobs.NewJobRunner(store.ReservationRepository, emailSvc, tokenIssuer, cfg)

	// Initialize HTTP handlers
	publicHandler := httpapi.NewPublicHandler(requestSvc, reservationSvc, paymentSvc)
	adminHandler := httpapi.NewAdminHandler(requestSvc, reservationSvc, paymentSvc, documentSvc, catalogSvc, cfg.Scheduler.AdminToken)
	jobsHandler := httpapi.NewJobsHandler(jobRunner, cfg.Scheduler.TriggerToken)

	router := httpapi.NewRouter(publicHandler, adminHandler, jobsHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
