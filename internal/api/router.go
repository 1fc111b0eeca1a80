package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "goldloan-engine/docs"

	"goldloan-engine/internal/api/handler"
	mw "goldloan-engine/internal/api/middleware"
	"goldloan-engine/internal/config"
	"goldloan-engine/internal/domain/admin"
	"goldloan-engine/internal/domain/customer"
	"goldloan-engine/internal/domain/dashboard"
	"goldloan-engine/internal/domain/golditem"
	"goldloan-engine/internal/domain/loan"
)

type Services struct {
	Loan      loan.Service
	GoldItem  golditem.Service
	Customer  customer.Service
	Dashboard dashboard.Service
	Admin     admin.Service
}

func SetupRouter(svcs Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, svcs, cfg, logger)
	setupAdminRoutes(router, svcs, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, svcs Services, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(*cfg, svcs.Admin, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupAdminRoutes(router *chi.Mux, svcs Services, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(svcs.Loan, logger)
	goldItemHandler := handler.NewGoldItemHandler(svcs.GoldItem, logger)
	customerHandler := handler.NewCustomerHandler(svcs.Customer, logger)
	dashboardHandler := handler.NewDashboardHandler(svcs.Dashboard, logger)
	adminHandler := handler.NewAdminHandler(svcs.Admin, logger)

	router.Route("/admin", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", customerHandler.CreateCustomer)
			r.Get("/", customerHandler.ListCustomers)
			r.Route("/{customerID}", func(r chi.Router) {
				r.Get("/", customerHandler.GetCustomer)
				r.Put("/", customerHandler.UpdateCustomer)
				r.Delete("/", customerHandler.DeleteCustomer)
			})
		})

		r.Route("/gold-items", func(r chi.Router) {
			r.Post("/", goldItemHandler.AddItem)
			r.Get("/", goldItemHandler.ListItems)
			r.Get("/available", goldItemHandler.ListAvailableItems)
			r.Get("/pledged", goldItemHandler.ListPledgedItems)
			r.Route("/{itemID}", func(r chi.Router) {
				r.Get("/", goldItemHandler.GetItem)
				r.Put("/", goldItemHandler.UpdateItem)
				r.Delete("/", goldItemHandler.RemoveItem)
			})
		})

		r.Route("/customer-loans", func(r chi.Router) {
			r.Post("/", loanHandler.CreateCustomerLoan)
			r.Get("/", loanHandler.ListCustomerLoans)
			r.Get("/expired", loanHandler.ListExpiredCustomerLoans)
			r.Get("/customer/{customerID}", loanHandler.ListLoansByCustomer)
			r.Route("/{loanID}", func(r chi.Router) {
				r.Get("/", loanHandler.GetCustomerLoan)
				r.Post("/repayment", loanHandler.ApplyRepayment)
			})
		})

		r.Route("/bank-loans", func(r chi.Router) {
			r.Post("/", loanHandler.CreateBankLoan)
			r.Get("/", loanHandler.ListBankLoans)
			r.Route("/{loanID}", func(r chi.Router) {
				r.Get("/", loanHandler.GetBankLoan)
				r.Post("/payment", loanHandler.ApplyBankPayment)
			})
		})

		r.Get("/transactions/loan/{loanID}", loanHandler.ListTransactions)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", dashboardHandler.GetMetrics)
			r.Post("/snapshot", dashboardHandler.SaveSnapshot)
			r.Get("/snapshots", dashboardHandler.ListSnapshots)
		})
	})

	router.Route("/admin-management", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/admins", adminHandler.ListAdmins)
		r.Post("/admins/add", adminHandler.AddAdmin)
		r.Post("/admins/remove", adminHandler.RemoveAdmin)
	})
}
