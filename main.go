package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/stockfolio/src/config"
	"github.com/username/stockfolio/src/database"
	"github.com/username/stockfolio/src/handlers"
	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/processors"
	"github.com/username/stockfolio/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == config.Cfg.FrontendBaseURL {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Stockfolio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	priceService := services.NewPriceService()
	csvService := services.NewCSVService()

	holdingsProcessor := processors.NewHoldingsProcessor()
	salesProcessor := processors.NewSalesProcessor()
	summaryProcessor := processors.NewSummaryProcessor()

	portfolioService := services.NewPortfolioService(
		holdingsProcessor,
		salesProcessor,
		summaryProcessor,
		priceService,
		reportCache,
	)

	txHandler := handlers.NewTransactionHandler(portfolioService, csvService)
	cashFlowHandler := handlers.NewCashFlowHandler(portfolioService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	priceHandler := handlers.NewPriceHandler(priceService, portfolioService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Stockfolio backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", txHandler.HandleListTransactions)
		r.Post("/transactions", txHandler.HandleAddTransaction)
		r.Delete("/transactions/{id}", txHandler.HandleDeleteTransaction)
		r.Post("/transactions/import", txHandler.HandleImportCSV)
		r.Get("/transactions/export", txHandler.HandleExportCSV)
		r.Delete("/data", txHandler.HandleClearAllData)

		r.Get("/cashflows", cashFlowHandler.HandleListCashFlows)
		r.Post("/cashflows", cashFlowHandler.HandleAddCashFlow)
		r.Delete("/cashflows/{id}", cashFlowHandler.HandleDeleteCashFlow)
		r.Get("/cashflows/summary", cashFlowHandler.HandleGetCashFlowSummary)

		r.Get("/holdings", portfolioHandler.HandleGetHoldings)
		r.Get("/sales", portfolioHandler.HandleGetSaleRecords)
		r.Get("/summary", portfolioHandler.HandleGetSummary)

		r.Get("/prices", priceHandler.HandleGetPrices)
		r.Post("/prices/refresh", priceHandler.HandleRefreshPrices)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
