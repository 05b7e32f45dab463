/*
book.go - The ledger facade

PURPOSE:
  Book owns the two canonical in-memory collections (transactions and
  lots) and orchestrates the engine: it validates inputs, dispatches sales
  to the FIFO allocator, creates lots on purchase, and serves read-only
  derivations (valuation, summary). State is an explicit object, never
  ambient process-wide globals, so the engine is testable in isolation and
  safely embeddable in a concurrent host.

CONCURRENCY:
  The ledger is a single-writer design. Book carries an RWMutex so an
  embedding HTTP host may run read-only calls (Transactions, Lots,
  ValueAsOf, Summarize) concurrently with each other; RecordPurchase and
  RecordSale serialize against everything.

COMMIT CONTRACT:
  RecordSale either fully succeeds (transaction appended, lots drained,
  COGS/profit stamped) or fully fails with no observable mutation. The
  allocator works on a copy and Book swaps it in only on success.

SEE ALSO:
  - allocator.go: The FIFO walk invoked on sale
  - store.go: Persistence interface; hosts snapshot after every mutation
*/
package ledger

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// BOOK - Owns the canonical collections
// =============================================================================

type Book struct {
	mu           sync.RWMutex
	transactions []Transaction
	lots         []Lot

	// Transactions dated on or before lockedUpTo are rejected.
	// Zero means no lock.
	lockedUpTo Date
}

type Option func(*Book)

// WithLockDate rejects any new transaction dated on or before d.
func WithLockDate(d Date) Option {
	return func(b *Book) { b.lockedUpTo = d }
}

func NewBook(opts ...Option) *Book {
	b := &Book{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Restore replaces the live collections with a loaded snapshot. Used by
// hosts at startup, paired with Store.Load. Lots are re-sorted to restore
// the FIFO ordering invariant regardless of snapshot order.
func (b *Book) Restore(txs []Transaction, lots []Lot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.transactions = append([]Transaction(nil), txs...)
	b.lots = append([]Lot(nil), lots...)
	sort.SliceStable(b.lots, func(i, j int) bool {
		return b.lots[i].Date.Before(b.lots[j].Date)
	})
}

// =============================================================================
// ENTRY INPUT - What a capture collaborator submits
// =============================================================================

// EntryInput is the validated candidate a host hands to RecordPurchase or
// RecordSale. The engine does not parse free text; manual entry and
// AI/OCR extraction collaborators produce this tuple upstream.
type EntryInput struct {
	Date         Date
	Counterparty string
	Quantity     decimal.Decimal // grams
	UnitRate     decimal.Decimal // currency per gram
	TaxRate      decimal.Decimal // percent
}

func (b *Book) validate(in EntryInput) error {
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	if strings.TrimSpace(in.Counterparty) == "" {
		return &ValidationError{Field: "counterparty", Reason: "required"}
	}
	if !in.Quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if !in.UnitRate.IsPositive() {
		return &ValidationError{Field: "unitRate", Reason: "must be positive"}
	}
	if in.TaxRate.IsNegative() {
		return &ValidationError{Field: "taxRate", Reason: "must not be negative"}
	}
	if !b.lockedUpTo.IsZero() && in.Date.BeforeOrEqual(b.lockedUpTo) {
		return &LockedPeriodError{Date: in.Date, LockedUpTo: b.lockedUpTo}
	}
	return nil
}

// newTransaction fills the fields common to both kinds.
func newTransaction(kind TransactionKind, in EntryInput) Transaction {
	taxable := in.Quantity.Mul(in.UnitRate)
	taxAmount := taxable.Mul(in.TaxRate).Div(decimal.NewFromInt(100))
	return Transaction{
		ID:            uuid.NewString(),
		Date:          in.Date,
		Kind:          kind,
		Counterparty:  strings.TrimSpace(in.Counterparty),
		Quantity:      in.Quantity,
		UnitRate:      in.UnitRate,
		TaxRate:       in.TaxRate,
		TaxAmount:     taxAmount,
		TaxableAmount: taxable,
		GrossAmount:   taxable.Add(taxAmount),
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// RecordPurchase appends a purchase transaction and opens its cost lot.
// The lot collection is re-sorted ascending by date (stable) after
// insertion; callers must not assume insertion order survives.
func (b *Book) RecordPurchase(in EntryInput) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.validate(in); err != nil {
		return Transaction{}, err
	}

	tx := newTransaction(Purchase, in)
	lot := Lot{
		ID:                tx.ID,
		Date:              tx.Date,
		OriginalQuantity:  tx.Quantity,
		RemainingQuantity: tx.Quantity,
		UnitCost:          tx.UnitRate,
		CumulativeRevenue: decimal.Zero,
	}

	b.transactions = append(b.transactions, tx)
	b.lots = append(b.lots, lot)
	sort.SliceStable(b.lots, func(i, j int) bool {
		return b.lots[i].Date.Before(b.lots[j].Date)
	})

	return tx, nil
}

// RecordSale appends a sale transaction after draining lots FIFO. Fails
// with ErrInsufficientStock when system-wide remaining stock cannot cover
// the quantity (ShortfallEpsilon tolerance). On failure nothing changes.
func (b *Book) RecordSale(in EntryInput) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.validate(in); err != nil {
		return Transaction{}, err
	}

	// Pre-check availability. The allocator re-verifies as it walks, but
	// rejecting here gives the caller the shortage without any work done.
	available := TotalRemaining(b.lots)
	if in.Quantity.Sub(available).GreaterThan(ShortfallEpsilon) {
		return Transaction{}, &InsufficientStockError{Available: available, Requested: in.Quantity}
	}

	result, err := Allocate(b.lots, in.Quantity, in.UnitRate, in.Date)
	if err != nil {
		return Transaction{}, err
	}

	tx := newTransaction(Sale, in)
	tx.COGS = result.TotalCost
	tx.Profit = tx.TaxableAmount.Sub(result.TotalCost)
	tx.Allocations = result.Draws

	// Commit point: swap in the drained lots, append the transaction.
	b.lots = result.Lots
	b.transactions = append(b.transactions, tx)

	return tx, nil
}

// Reset clears both collections. Irreversible; used for full data wipe.
func (b *Book) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transactions = nil
	b.lots = nil
}

// =============================================================================
// READ-ONLY VIEWS
// =============================================================================

// Transactions returns a copy of the transaction history in append order.
func (b *Book) Transactions() []Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Transaction(nil), b.transactions...)
}

// Lots returns a copy of the lot collection in FIFO order.
func (b *Book) Lots() []Lot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Lot(nil), b.lots...)
}

// CurrentStock returns total remaining grams across every lot.
func (b *Book) CurrentStock() decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return TotalRemaining(b.lots)
}

// ValueAsOf reconstructs inventory value at the end of the given day by
// replaying the transaction history. Never touches live lot state.
func (b *Book) ValueAsOf(cutoff Date) decimal.Decimal {
	return ValueAsOf(b.Transactions(), cutoff)
}

// Summary is the dashboard projection of the live ledger.
type Summary struct {
	CurrentStock    decimal.Decimal
	InventoryValue  decimal.Decimal // remaining quantity at cost
	OpenLots        int
	TotalPurchased  decimal.Decimal // grams
	TotalSold       decimal.Decimal // grams
	PurchaseOutlay  decimal.Decimal // gross purchases
	SalesRevenue    decimal.Decimal // gross sales
	RealizedProfit  decimal.Decimal
	TransactionCount int
}

// Summarize derives the dashboard totals from the live collections.
func (b *Book) Summarize() Summary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Summary{
		CurrentStock:     TotalRemaining(b.lots),
		InventoryValue:   decimal.Zero,
		TotalPurchased:   decimal.Zero,
		TotalSold:        decimal.Zero,
		PurchaseOutlay:   decimal.Zero,
		SalesRevenue:     decimal.Zero,
		RealizedProfit:   decimal.Zero,
		TransactionCount: len(b.transactions),
	}
	for _, l := range b.lots {
		s.InventoryValue = s.InventoryValue.Add(l.Value())
		if l.Open() {
			s.OpenLots++
		}
	}
	for _, tx := range b.transactions {
		switch tx.Kind {
		case Purchase:
			s.TotalPurchased = s.TotalPurchased.Add(tx.Quantity)
			s.PurchaseOutlay = s.PurchaseOutlay.Add(tx.GrossAmount)
		case Sale:
			s.TotalSold = s.TotalSold.Add(tx.Quantity)
			s.SalesRevenue = s.SalesRevenue.Add(tx.GrossAmount)
			s.RealizedProfit = s.RealizedProfit.Add(tx.Profit)
		}
	}
	return s
}
