package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/wealthpath/expense-analytics/docs"
	"github.com/wealthpath/expense-analytics/internal/config"
	"github.com/wealthpath/expense-analytics/internal/handler"
	"github.com/wealthpath/expense-analytics/internal/logger"
	"github.com/wealthpath/expense-analytics/internal/repository"
	"github.com/wealthpath/expense-analytics/internal/scheduler"
	"github.com/wealthpath/expense-analytics/internal/service"
)

// @title Expense Analytics API
// @version 1.0
// @description Expense tracking API with categories, budgets and spending analytics.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@wealthpath.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine outside development
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(os.Stdout, cfg.Env, cfg.LogLevel)
	logger.SetDefault(log)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), time.Minute)
	db, err := repository.Connect(connectCtx, cfg.DatabaseURL, repository.DefaultRetryConfig(), log)
	cancelConnect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if cfg.RunMigrations {
		if err := repository.RunMigrations(db); err != nil {
			log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		log.Info("Migrations applied")
	}

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)

	// Initialize services
	analyticsService := service.NewAnalyticsService(expenseRepo, categoryRepo, budgetRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	expenseService := service.NewExpenseService(expenseRepo, categoryRepo)
	budgetService := service.NewBudgetService(budgetRepo, categoryRepo, expenseRepo)
	exportService := service.NewExportService(expenseRepo, analyticsService)

	// Initialize handlers
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	exportHandler := handler.NewExportHandler(exportService)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.RequestLogger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Throttle(cfg.MaxConcurrentRequests))
	r.Use(handler.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Health check
	// @Summary Health check
	// @Description Check if the API is running
	// @Tags health
	// @Produce json
	// @Success 200 {object} map[string]string
	// @Router /health [get]
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(handler.AuthMiddleware(cfg.JWTSecret))

		// Analytics
		r.Get("/api/analytics/summary", analyticsHandler.Summary)
		r.Get("/api/analytics/monthly", analyticsHandler.Monthly)
		r.Get("/api/analytics/monthly/export", exportHandler.MonthlyReportPDF)
		r.Get("/api/analytics/yearly", analyticsHandler.Yearly)
		r.Get("/api/analytics/category-wise", analyticsHandler.CategoryWise)
		r.Get("/api/analytics/trends", analyticsHandler.Trends)

		// Categories
		r.Get("/api/categories", categoryHandler.List)
		r.Post("/api/categories", categoryHandler.Create)
		r.Get("/api/categories/{id}", categoryHandler.Get)
		r.Put("/api/categories/{id}", categoryHandler.Update)
		r.Delete("/api/categories/{id}", categoryHandler.Delete)

		// Expenses
		r.Get("/api/expenses", expenseHandler.List)
		r.Post("/api/expenses", expenseHandler.Create)
		r.Get("/api/expenses/search", expenseHandler.Search)
		r.Get("/api/expenses/export", exportHandler.ExpensesCSV)
		r.Get("/api/expenses/by-category/{categoryId}", expenseHandler.ByCategory)
		r.Get("/api/expenses/{id}", expenseHandler.Get)
		r.Put("/api/expenses/{id}", expenseHandler.Update)
		r.Delete("/api/expenses/{id}", expenseHandler.Delete)

		// Budgets
		r.Get("/api/budgets", budgetHandler.List)
		r.Post("/api/budgets", budgetHandler.Create)
		r.Get("/api/budgets/{id}", budgetHandler.Get)
		r.Get("/api/budgets/{id}/status", budgetHandler.Status)
		r.Put("/api/budgets/{id}", budgetHandler.Update)
		r.Delete("/api/budgets/{id}", budgetHandler.Delete)
	})

	// Deactivate budgets whose period has ended
	var sweeper *scheduler.Scheduler
	if cfg.BudgetSweep.Enabled {
		sweeper = scheduler.New(scheduler.Config{
			Schedule: cfg.BudgetSweep.Schedule,
			Timeout:  cfg.BudgetSweep.Timeout,
			Enabled:  cfg.BudgetSweep.Enabled,
		}, budgetRepo, log)
		if err := sweeper.Start(); err != nil {
			log.Error("Failed to start budget sweep scheduler", "error", err)
			sweeper = nil
		} else {
			log.Info("Budget sweep scheduler started",
				"schedule", cfg.BudgetSweep.Schedule,
				"timeout", cfg.BudgetSweep.Timeout,
				"next_run", sweeper.NextRun(),
			)
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down server...")

		// Stop scheduler first
		if sweeper != nil && sweeper.IsRunning() {
			<-sweeper.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
	}()

	log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
	<-done
}
