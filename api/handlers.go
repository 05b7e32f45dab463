/*
handlers.go - HTTP API handlers for the bullion ledger

PURPOSE:
  Exposes the FIFO lot-accounting engine via REST. Handles HTTP
  request/response, JSON serialization, and delegates to the ledger and
  report packages.

ENDPOINTS:
  Transactions:
    POST   /api/transactions/purchase     Record a purchase (opens a lot)
    POST   /api/transactions/sale         Record a sale (drains lots FIFO)
    GET    /api/transactions              Filtered history

  Inventory:
    GET    /api/lots                      Lot listing (?open=true)
    GET    /api/valuation?date=           Point-in-time valuation (replay)

  Reports:
    GET    /api/reports/summary           Dashboard totals
    GET    /api/reports/aging             Stock aging buckets
    GET    /api/reports/suppliers         Supplier price statistics
    GET    /api/reports/customers         Customer profitability
    GET    /api/reports/turnover          Turnover ratio for a range
    GET    /api/reports/alerts            Risk alerts
    GET    /api/reports/trend             Daily profit trend

  Export:
    GET    /api/export/transactions.csv   CSV export

  Admin:
    POST   /api/reset                     Full data wipe

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, locked period
  - 409: Insufficient stock
  - 500: Internal errors (persistence)

PERSISTENCE:
  After every successful mutation the full snapshot (both collections) is
  handed to the store. A failed save is reported as 500; the in-memory
  ledger keeps the committed state and the next successful save converges.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aurum/bullion-engine/ledger"
	"github.com/aurum/bullion-engine/report"
	"github.com/shopspring/decimal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Book  *ledger.Book
	Store ledger.Store
}

// NewHandler creates a new handler around the given book and store.
func NewHandler(book *ledger.Book, store ledger.Store) *Handler {
	return &Handler{Book: book, Store: store}
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// RecordPurchase records a purchase and opens its cost lot.
func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	h.recordEntry(w, r, h.Book.RecordPurchase)
}

// RecordSale records a sale, draining lots FIFO.
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	h.recordEntry(w, r, h.Book.RecordSale)
}

func (h *Handler) recordEntry(w http.ResponseWriter, r *http.Request, record func(ledger.EntryInput) (ledger.Transaction, error)) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input, err := parseEntry(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}

	tx, err := record(input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist snapshot", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func parseEntry(req EntryRequest) (ledger.EntryInput, error) {
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		return ledger.EntryInput{}, err
	}
	return ledger.EntryInput{
		Date:         date,
		Counterparty: req.PartyName,
		Quantity:     decimal.NewFromFloat(req.Quantity),
		UnitRate:     decimal.NewFromFloat(req.Rate),
		TaxRate:      decimal.NewFromFloat(req.GSTRate),
	}, nil
}

func (h *Handler) persist(r *http.Request) error {
	return h.Store.Save(r.Context(), h.Book.Transactions(), h.Book.Lots())
}

// ListTransactions returns the filtered transaction history.
// GET /api/transactions?from=&to=&kind=&party=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	txs := filter.Apply(h.Book.Transactions())
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// =============================================================================
// INVENTORY HANDLERS
// =============================================================================

// ListLots returns the lot collection in FIFO order.
// GET /api/lots?open=true
func (h *Handler) ListLots(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("open") == "true"

	var dtos []LotDTO
	for _, lot := range h.Book.Lots() {
		if openOnly && !lot.Open() {
			continue
		}
		dtos = append(dtos, toLotDTO(lot))
	}
	if dtos == nil {
		dtos = []LotDTO{}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Valuation returns the replayed inventory value as of a date.
// GET /api/valuation?date=YYYY-MM-DD (default: today)
func (h *Handler) Valuation(w http.ResponseWriter, r *http.Request) {
	date := ledger.Today()
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := ledger.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		date = parsed
	}

	value := h.Book.ValueAsOf(date)
	writeJSON(w, http.StatusOK, ValuationDTO{Date: date.String(), Value: value.String()})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// Summary returns the dashboard totals.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSummaryDTO(h.Book.Summarize()))
}

// Aging returns the stock aging buckets as of today.
func (h *Handler) Aging(w http.ResponseWriter, r *http.Request) {
	aging := report.StockAging(h.Book.Lots(), ledger.Today())
	writeJSON(w, http.StatusOK, AgingDTO{
		UpTo7:          aging.UpTo7.String(),
		UpTo15:         aging.UpTo15.String(),
		UpTo30:         aging.UpTo30.String(),
		Over30:         aging.Over30.String(),
		TotalOpen:      aging.TotalOpen.String(),
		AverageAgeDays: aging.AverageAgeDays.String(),
	})
}

// Suppliers returns supplier price statistics.
// GET /api/reports/suppliers?from=&to=&party=
func (h *Handler) Suppliers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	stats := report.Suppliers(filter.Apply(h.Book.Transactions()))
	writeJSON(w, http.StatusOK, toSupplierDTOs(stats))
}

// Customers returns customer profitability statistics.
// GET /api/reports/customers?from=&to=&party=
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	stats := report.Customers(filter.Apply(h.Book.Transactions()))
	writeJSON(w, http.StatusOK, toCustomerDTOs(stats))
}

// TurnoverReport computes the turnover ratio for a range.
// GET /api/reports/turnover?from=&to= (both required)
func (h *Handler) TurnoverReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := requireRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	t := report.ComputeTurnover(h.Book.Transactions(), from, to)
	writeJSON(w, http.StatusOK, TurnoverDTO{
		From:              t.From.String(),
		To:                t.To.String(),
		TotalCOGS:         t.TotalCOGS.String(),
		AvgInventoryValue: t.AvgInventoryValue.String(),
		TurnoverRatio:     t.TurnoverRatio.String(),
		AvgDaysToSell:     t.AvgDaysToSell.String(),
	})
}

// AlertsReport returns the current risk alerts.
func (h *Handler) AlertsReport(w http.ResponseWriter, r *http.Request) {
	alerts := report.Alerts(h.Book.Transactions(), h.Book.Lots(), ledger.Today())
	writeJSON(w, http.StatusOK, toAlertDTOs(alerts))
}

// Trend returns the daily profit trend for a range.
// GET /api/reports/trend?from=&to= (both required)
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	from, to, err := requireRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	trend := report.DailyTrend(h.Book.Transactions(), from, to)
	writeJSON(w, http.StatusOK, toDailyProfitDTOs(trend))
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportTransactionsCSV streams the filtered history as CSV. Free-text
// fields are quoted by the csv writer as needed.
// GET /api/export/transactions.csv?from=&to=&kind=&party=
func (h *Handler) ExportTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "date", "kind", "partyName", "quantityGrams",
		"ratePerGram", "gstRate", "gstAmount", "taxableAmount", "totalAmount",
		"cogs", "profit"})

	for _, tx := range filter.Apply(h.Book.Transactions()) {
		cogs, profit := "", ""
		if tx.IsSale() {
			cogs = tx.COGS.String()
			profit = tx.Profit.String()
		}
		cw.Write([]string{
			tx.ID,
			tx.Date.String(),
			string(tx.Kind),
			tx.Counterparty,
			tx.Quantity.String(),
			tx.UnitRate.String(),
			tx.TaxRate.String(),
			tx.TaxAmount.String(),
			tx.TaxableAmount.String(),
			tx.GrossAmount.String(),
			cogs,
			profit,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("csv export failed: %v", err)
	}
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset wipes both the live ledger and the persisted snapshot.
// POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.Book.Reset()
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseFilter(r *http.Request) (report.Filter, error) {
	var f report.Filter
	q := r.URL.Query()

	if s := q.Get("from"); s != "" {
		d, err := ledger.ParseDate(s)
		if err != nil {
			return f, err
		}
		f.From = d
	}
	if s := q.Get("to"); s != "" {
		d, err := ledger.ParseDate(s)
		if err != nil {
			return f, err
		}
		f.To = d
	}
	if s := q.Get("kind"); s != "" {
		f.Kind = ledger.TransactionKind(s)
	}
	f.Search = q.Get("party")
	return f, nil
}

func requireRange(r *http.Request) (ledger.Date, ledger.Date, error) {
	from, err := ledger.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return ledger.Date{}, ledger.Date{}, err
	}
	to, err := ledger.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return ledger.Date{}, ledger.Date{}, err
	}
	if to.Before(from) {
		return ledger.Date{}, ledger.Date{}, errors.New("'to' precedes 'from'")
	}
	return from, to, nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientStock):
		writeErrorCode(w, http.StatusConflict, "Insufficient stock", "insufficient_stock", err)
	case ledger.IsClientError(err):
		writeErrorCode(w, http.StatusBadRequest, "Invalid entry", "validation", err)
	default:
		writeError(w, http.StatusInternalServerError, "Operation failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeErrorCode(w http.ResponseWriter, status int, message, code string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
