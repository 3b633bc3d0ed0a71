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

	"github.com/pautanglog/pautanglog/internal/config"
	"github.com/pautanglog/pautanglog/internal/repository"
	"github.com/pautanglog/pautanglog/internal/service"
)

func main() {
	log.Println("Starting ledger scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
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

	dashboardService := service.NewDashboardService(
		repository.NewLoanRepository(db),
		repository.NewInstallmentRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewReportRepository(db),
		redisClient,
		cfg.Cache.DashboardTTL,
	)

	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.SchedulerLocation()))

	setupCronJobs(c, dashboardService)

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, dashboards *service.DashboardService) {
	// Daily dashboard warmup at midnight
	_, err := c.AddFunc("0 0 0 * * *", func() {
		log.Println("Running daily dashboard warmup job...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := dashboards.WarmCaches(ctx); err != nil {
			log.Printf("Dashboard warmup job failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling dashboard warmup job: %v", err)
	}

	// Daily overdue report at 6 AM
	_, err = c.AddFunc("0 0 6 * * *", func() {
		log.Println("Running daily overdue report job...")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := dashboards.LogOverdueReport(ctx, time.Now()); err != nil {
			log.Printf("Overdue report job failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling overdue report job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
