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

	"github.com/pautanglog/pautanglog/internal/config"
	"github.com/pautanglog/pautanglog/internal/handler"
	"github.com/pautanglog/pautanglog/internal/repository"
	"github.com/pautanglog/pautanglog/internal/service"
	"github.com/pautanglog/pautanglog/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories
	loanRepo := repository.NewLoanRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	borrowerRepo := repository.NewBorrowerRepository(db)
	reportRepo := repository.NewReportRepository(db)
	txManager := repository.NewTxManager(db)

	// Services
	loanService := service.NewLoanService(loanRepo, installmentRepo, paymentRepo, borrowerRepo, txManager, redisClient)
	paymentService := service.NewPaymentService(loanRepo, installmentRepo, paymentRepo, txManager, redisClient)
	borrowerService := service.NewBorrowerService(borrowerRepo)
	dashboardService := service.NewDashboardService(loanRepo, installmentRepo, paymentRepo, reportRepo, redisClient, cfg.Cache.DashboardTTL)

	// Handlers
	loanHandler := handler.NewLoanHandler(loanService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	borrowerHandler := handler.NewBorrowerHandler(borrowerService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(loanHandler, paymentHandler, borrowerHandler, dashboardHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
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

func setupRoutes(
	loanHandler *handler.LoanHandler,
	paymentHandler *handler.PaymentHandler,
	borrowerHandler *handler.BorrowerHandler,
	dashboardHandler *handler.DashboardHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health checks
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/borrowers", borrowerHandler.CreateBorrower).Methods("POST")
	api.HandleFunc("/borrowers", borrowerHandler.ListBorrowers).Methods("GET")

	api.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans", loanHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/schedule", loanHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{loanId}/note", loanHandler.PromissoryNote).Methods("GET")
	api.HandleFunc("/loans/{loanId}/void", loanHandler.VoidLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/default", loanHandler.MarkDefaulted).Methods("POST")

	api.HandleFunc("/installments/{installmentId}/payments", paymentHandler.AddPayment).Methods("POST")
	api.HandleFunc("/installments/{installmentId}/penalty", paymentHandler.SetPenalty).Methods("PUT")
	api.HandleFunc("/installments/{installmentId}/rebate", paymentHandler.SetRebate).Methods("PUT")
	api.HandleFunc("/payments/{paymentId}", paymentHandler.UpdatePayment).Methods("PUT")
	api.HandleFunc("/payments/{paymentId}", paymentHandler.DeletePayment).Methods("DELETE")

	api.HandleFunc("/dashboard/summary", dashboardHandler.Summary).Methods("GET")

	return router
}
