package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/handlers"
	custommiddleware "github.com/davidappleyard/investments.davidappleyard.net/internal/api/middleware"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/config"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(svcs *service.Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// Mutating endpoints share one limiter
	limit := custommiddleware.RateLimit(cfg.Import.RatePerMinute, cfg.Import.RateBurst)
	protected := func(r chi.Router) chi.Router {
		return r.With(custommiddleware.APIKeyMiddleware, limit)
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svcs.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/import", func(r chi.Router) {
			importHandler := handlers.NewImportHandler(svcs.Import, svcs.Batch, cfg.Import.MaxUploadBytes)
			protected(r).Post("/", importHandler.Import)
			r.Get("/batch", importHandler.Batches)

			r.Route("/batch/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", importHandler.Batch)
				r.Get("/source", importHandler.Source)
				protected(r).Post("/rollback", importHandler.Rollback)
			})
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(svcs.Valuation, svcs.Snapshot, svcs.Report)
			r.Get("/cash", accountHandler.Cash)
			r.Get("/valuation", accountHandler.Valuation)
			r.Get("/performance", accountHandler.Performance)
			r.Get("/history", accountHandler.History)
		})

		r.Route("/report", func(r chi.Router) {
			reportHandler := handlers.NewReportHandler(svcs.Report)
			r.Get("/tax-years", reportHandler.TaxYears)
		})

		r.Route("/export", func(r chi.Router) {
			exportHandler := handlers.NewExportHandler(svcs.Export)
			r.Get("/cgt", exportHandler.CGT)
		})

		r.Route("/ticker", func(r chi.Router) {
			tickerHandler := handlers.NewTickerHandler(svcs.Reference)
			r.Get("/", tickerHandler.Tickers)
			protected(r).Post("/", tickerHandler.AddTicker)
			protected(r).Post("/price", tickerHandler.SetPrice)
			protected(r).Post("/backfill-dividends", tickerHandler.BackfillDividends)
		})

		r.Route("/snapshot", func(r chi.Router) {
			snapshotHandler := handlers.NewSnapshotHandler(svcs.Snapshot, cfg.Snapshot.Concurrency)
			protected(r).Post("/backfill", snapshotHandler.Backfill)
		})
	})

	return r
}
