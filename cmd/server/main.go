package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/borctakip/debt-tracker/internal/auth"
	"github.com/borctakip/debt-tracker/internal/config"
	"github.com/borctakip/debt-tracker/internal/currency"
	"github.com/borctakip/debt-tracker/internal/handler"
	"github.com/borctakip/debt-tracker/internal/repository"
	"github.com/borctakip/debt-tracker/internal/service"
	"github.com/borctakip/debt-tracker/pkg/response"
)

func main() {
	// Load .env before viper reads the environment
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize currency conversion
	feed := currency.NewFeed(cfg.Rates.FeedURL, cfg.Rates.FeedTimeout)
	converter := currency.NewConverter(feed, redisClient, cfg.Rates.CacheTTL)

	// Warm the rate cache without blocking startup
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Rates.FeedTimeout)
		defer cancel()
		if err := converter.Refresh(ctx); err != nil {
			log.Printf("Initial rate refresh failed, conversions will use the shared cache: %v", err)
		}
	}()

	// Initialize repositories
	debtRepo := repository.NewDebtRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	debtService := service.NewDebtService(debtRepo, paymentRepo, converter)
	authService := service.NewAuthService(userRepo, cfg)

	// Initialize handlers
	debtHandler := handler.NewDebtHandler(debtService)
	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	// Setup routes
	router := setupRoutes(cfg, debtHandler, authHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(cfg *config.Config, debtHandler *handler.DebtHandler, authHandler *handler.AuthHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware, response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/login", authHandler.Login).Methods("POST")

	// Everything below requires a bearer token
	protected := api.NewRoute().Subrouter()
	protected.Use(auth.Middleware(cfg.Auth.JWTSecret))

	protected.HandleFunc("/debts", debtHandler.CreateDebt).Methods("POST")
	protected.HandleFunc("/debts", debtHandler.ListDebts).Methods("GET")
	protected.HandleFunc("/debts/{debtId}", debtHandler.GetDebt).Methods("GET")
	protected.HandleFunc("/debts/{debtId}", debtHandler.UpdateDebt).Methods("PUT")
	protected.HandleFunc("/debts/{debtId}", debtHandler.DeleteDebt).Methods("DELETE")
	protected.HandleFunc("/debts/{debtId}/mark-paid", debtHandler.MarkPaid).Methods("POST")
	protected.HandleFunc("/debts/{debtId}/mark-unpaid", debtHandler.MarkUnpaid).Methods("POST")
	protected.HandleFunc("/debts/{debtId}/payments", debtHandler.RecordPayment).Methods("POST")
	protected.HandleFunc("/debts/{debtId}/payments", debtHandler.ListPayments).Methods("GET")
	protected.HandleFunc("/dashboard/stats", debtHandler.GetDashboardStats).Methods("GET")

	return router
}
