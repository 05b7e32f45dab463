package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aurum/bullion-engine/api"
	"github.com/aurum/bullion-engine/ledger"
	"github.com/aurum/bullion-engine/ledger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newServer(t *testing.T) (*httptest.Server, *ledger.Book) {
	t.Helper()
	book := ledger.NewBook()
	h := api.NewHandler(book, store.NewMemory())
	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, book
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func entryBody(date, party string, qty, rate float64) api.EntryRequest {
	return api.EntryRequest{Date: date, PartyName: party, Quantity: qty, Rate: rate, GSTRate: 3}
}

func seed(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp := postJSON(t, srv, "/api/transactions/purchase", entryBody("2026-03-01", "Shree Refiners", 100, 6000))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, srv, "/api/transactions/sale", entryBody("2026-03-10", "Meena Jewels", 40, 6500))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// RECORDING
// =============================================================================

func TestRecordPurchase(t *testing.T) {
	srv, book := newServer(t)

	resp := postJSON(t, srv, "/api/transactions/purchase", entryBody("2026-03-01", "Shree Refiners", 100, 6000))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := decode[api.TransactionDTO](t, resp)
	assert.Equal(t, "PURCHASE", dto.Kind)
	assert.Equal(t, "Shree Refiners", dto.PartyName)
	assert.Equal(t, "600000", dto.TaxableAmount)
	assert.Equal(t, "18000", dto.GSTAmount)
	assert.Equal(t, "618000", dto.TotalAmount)
	assert.NotEmpty(t, dto.ID)

	require.Len(t, book.Lots(), 1)
}

func TestRecordSale_ReturnsProfitAndAllocations(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)

	resp := postJSON(t, srv, "/api/transactions/sale", entryBody("2026-03-15", "Meena Jewels", 10, 6500))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := decode[api.TransactionDTO](t, resp)
	assert.Equal(t, "SALE", dto.Kind)
	require.NotNil(t, dto.COGS)
	require.NotNil(t, dto.Profit)
	assert.Equal(t, "60000", *dto.COGS)
	assert.Equal(t, "5000", *dto.Profit)
	require.Len(t, dto.Allocations, 1)
	assert.Equal(t, "10", dto.Allocations[0].Quantity)
}

func TestRecordSale_InsufficientStock_Conflict(t *testing.T) {
	srv, book := newServer(t)
	seed(t, srv) // 60g left

	resp := postJSON(t, srv, "/api/transactions/sale", entryBody("2026-03-15", "Meena Jewels", 500, 6500))
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	dto := decode[api.ErrorResponse](t, resp)
	assert.Equal(t, "insufficient_stock", dto.Code)

	// The rejected sale must leave no trace.
	assert.Len(t, book.Transactions(), 2)
}

func TestRecordEntry_Validation(t *testing.T) {
	srv, _ := newServer(t)

	tests := []struct {
		name string
		body api.EntryRequest
	}{
		{"bad date", entryBody("15-03-2026", "Shree", 10, 6000)},
		{"blank party", entryBody("2026-03-01", "  ", 10, 6000)},
		{"zero quantity", entryBody("2026-03-01", "Shree", 0, 6000)},
		{"negative rate", entryBody("2026-03-01", "Shree", 10, -1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv, "/api/transactions/purchase", tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRecordEntry_MalformedJSON(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/api/transactions/purchase", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestListTransactions_Filtered(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)

	resp := get(t, srv, "/api/transactions?kind=SALE")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txs := decode[[]api.TransactionDTO](t, resp)
	require.Len(t, txs, 1)
	assert.Equal(t, "Meena Jewels", txs[0].PartyName)

	resp = get(t, srv, "/api/transactions?party=shree")
	txs = decode[[]api.TransactionDTO](t, resp)
	require.Len(t, txs, 1)
	assert.Equal(t, "PURCHASE", txs[0].Kind)
}

func TestListLots_OpenOnly(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)
	// Drain the first lot completely.
	resp := postJSON(t, srv, "/api/transactions/sale", entryBody("2026-03-20", "Meena Jewels", 60, 6500))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	all := decode[[]api.LotDTO](t, get(t, srv, "/api/lots"))
	require.Len(t, all, 1)
	assert.Equal(t, "0", all[0].RemainingQuantity)
	assert.Equal(t, "2026-03-20", all[0].ClosedDate)

	open := decode[[]api.LotDTO](t, get(t, srv, "/api/lots?open=true"))
	assert.Empty(t, open)
}

func TestValuation_AsOfDate(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)

	// Before the sale: full 100g at cost.
	resp := get(t, srv, "/api/valuation?date=2026-03-05")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decode[api.ValuationDTO](t, resp)
	assert.Equal(t, "2026-03-05", dto.Date)
	assert.Equal(t, "600000", dto.Value)

	// After the sale: 60g left.
	dto = decode[api.ValuationDTO](t, get(t, srv, "/api/valuation?date=2026-03-11"))
	assert.Equal(t, "360000", dto.Value)
}

func TestValuation_BadDate(t *testing.T) {
	srv, _ := newServer(t)
	resp := get(t, srv, "/api/valuation?date=garbage")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSummary(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)

	dto := decode[api.SummaryDTO](t, get(t, srv, "/api/reports/summary"))
	assert.Equal(t, "60", dto.CurrentStock)
	assert.Equal(t, "360000", dto.InventoryValue)
	assert.Equal(t, 1, dto.OpenLots)
	assert.Equal(t, "100", dto.TotalPurchased)
	assert.Equal(t, "40", dto.TotalSold)
	assert.Equal(t, "20000", dto.RealizedProfit)
	assert.Equal(t, 2, dto.TransactionCount)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestSuppliersReport(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)

	rows := decode[[]api.SupplierDTO](t, get(t, srv, "/api/reports/suppliers"))
	require.Len(t, rows, 1)
	assert.Equal(t, "Shree Refiners", rows[0].Name)
	assert.Equal(t, "100", rows[0].TotalGrams)
	assert.Equal(t, 1, rows[0].PurchaseCount)
}

func TestTurnoverReport_RequiresRange(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)

	resp := get(t, srv, "/api/reports/turnover")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing range must be rejected")

	resp = get(t, srv, "/api/reports/turnover?from=2026-03-10&to=2026-03-01")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "inverted range must be rejected")

	resp = get(t, srv, "/api/reports/turnover?from=2026-03-01&to=2026-03-31")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decode[api.TurnoverDTO](t, resp)
	assert.Equal(t, "240000", dto.TotalCOGS)
}

func TestTrendReport(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)

	resp := get(t, srv, "/api/reports/trend?from=2026-03-09&to=2026-03-11")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decode[[]api.DailyProfitDTO](t, resp)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-03-10", rows[1].Date)
	assert.Equal(t, "20000", rows[1].Profit)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportTransactionsCSV(t *testing.T) {
	srv, _ := newServer(t)
	seed(t, srv)

	resp := get(t, srv, "/api/export/transactions.csv")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "transactions.csv")

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "header plus two rows")
	assert.Equal(t, "id,date,kind,partyName,quantityGrams,ratePerGram,gstRate,gstAmount,taxableAmount,totalAmount,cogs,profit", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Shree Refiners")
	assert.Contains(t, lines[2], "Meena Jewels")
}

// =============================================================================
// RESET
// =============================================================================

func TestReset(t *testing.T) {
	srv, book := newServer(t)
	seed(t, srv)

	resp := postJSON(t, srv, "/api/reset", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Empty(t, book.Transactions())
	assert.Empty(t, book.Lots())
	assert.True(t, book.CurrentStock().IsZero())
}

func TestFullFlow_PersistAcrossRestart(t *testing.T) {
	// A purchase and sale recorded through one server, then the snapshot
	// rehydrates a fresh book behind a second server.
	mem := store.NewMemory()
	book1 := ledger.NewBook()
	srv1 := httptest.NewServer(api.NewRouter(api.NewHandler(book1, mem)))
	resp := postJSON(t, srv1, "/api/transactions/purchase", entryBody("2026-03-01", "Shree Refiners", 100, 6000))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, srv1, "/api/transactions/sale", entryBody("2026-03-10", "Meena Jewels", 40, 6500))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	srv1.Close()

	txs, lots, err := mem.Load(context.Background())
	require.NoError(t, err)
	book2 := ledger.NewBook()
	book2.Restore(txs, lots)
	srv2 := httptest.NewServer(api.NewRouter(api.NewHandler(book2, mem)))
	defer srv2.Close()

	dto := decode[api.SummaryDTO](t, get(t, srv2, "/api/reports/summary"))
	assert.Equal(t, "60", dto.CurrentStock)
	assert.Equal(t, 2, dto.TransactionCount)
}
