package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/borctakip/debt-tracker/internal/config"
	"github.com/borctakip/debt-tracker/internal/currency"
	"github.com/borctakip/debt-tracker/internal/repository"
	"github.com/borctakip/debt-tracker/pkg/utils"
)

func main() {
	log.Println("Starting debt tracker scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	feed := currency.NewFeed(cfg.Rates.FeedURL, cfg.Rates.FeedTimeout)
	converter := currency.NewConverter(feed, redisClient, cfg.Rates.CacheTTL)
	debtRepo := repository.NewDebtRepository(db)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, cfg, converter, debtRepo)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, converter *currency.Converter, debtRepo repository.DebtRepository) {
	// Periodic rate cache warm so conversions rarely see a stale snapshot
	_, err := c.AddFunc(cfg.Rates.RefreshCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Rates.FeedTimeout)
		defer cancel()

		if err := converter.Refresh(ctx); err != nil {
			log.Printf("Rate refresh job failed: %v", err)
			return
		}
		log.Println("Exchange rates refreshed")
	})
	if err != nil {
		log.Printf("Error scheduling rate refresh job: %v", err)
	}

	// Daily sweep reporting overdue debts. Notification delivery is handled
	// by an external collaborator; this job surfaces the candidates.
	_, err = c.AddFunc(cfg.Scheduler.OverdueSweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		now := time.Now()
		overdue, err := debtRepo.ListOverdue(ctx, utils.TruncateToDay(now))
		if err != nil {
			log.Printf("Overdue sweep failed: %v", err)
			return
		}

		for _, debt := range overdue {
			log.Printf("Overdue: debt %s owner %s %s days=%d",
				debt.ID, debt.OwnerID, debt.PersonName, utils.DaysBetween(*debt.DueDate, now))
		}
		log.Printf("Overdue sweep finished, %d debts overdue", len(overdue))
	})
	if err != nil {
		log.Printf("Error scheduling overdue sweep job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
