/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/purchase", h.RecordPurchase)
			r.Post("/sale", h.RecordSale)
		})

		r.Get("/lots", h.ListLots)
		r.Get("/valuation", h.Valuation)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", h.Summary)
			r.Get("/aging", h.Aging)
			r.Get("/suppliers", h.Suppliers)
			r.Get("/customers", h.Customers)
			r.Get("/turnover", h.TurnoverReport)
			r.Get("/alerts", h.AlertsReport)
			r.Get("/trend", h.Trend)
		})

		r.Get("/export/transactions.csv", h.ExportTransactionsCSV)

		r.Post("/reset", h.Reset)
	})

	return r
}
