/*
Package ledger provides the core FIFO lot-accounting engine.

PURPOSE:
  This package contains the types and algorithms for tracking ownership of
  a fungible commodity (gold, by weight) acquired in discrete cost lots and
  sold against those lots using First-In-First-Out cost attribution. It
  opens lots on purchase, drains them oldest-first on sale while computing
  cost-of-goods-sold and realized profit, and reconstructs historical
  inventory value by replaying the transaction history.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: An immutable ledger entry (purchase or sale)
  - Lot: A cost batch created by one purchase, drained by later sales
  - Allocation: The audit record of how much a sale drew from one lot

DESIGN PRINCIPLES:
  1. Immutability: Transactions are never modified after creation; a sale's
     COGS and profit are stamped once and never recomputed
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Epsilon boundaries: Near-zero remainders are snapped to exactly zero
     using fixed tolerances, preserving the boundary behavior of the
     original float arithmetic without its drift
  4. Auditability: Every sale carries the list of lots that funded it

SEE ALSO:
  - allocator.go: FIFO consumption algorithm
  - book.go: The ledger facade owning the live collections
  - replay.go: Point-in-time valuation by pure replay
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// EPSILON POLICY
// =============================================================================

var (
	// QuantityEpsilon is the closure tolerance: a lot (or a disposal
	// remainder) below this many grams is treated as exactly zero.
	QuantityEpsilon = decimal.RequireFromString("0.0001")

	// ShortfallEpsilon is the insufficient-stock tolerance: a sale is
	// rejected only when the unsatisfied remainder exceeds this.
	ShortfallEpsilon = decimal.RequireFromString("0.001")
)

// isNegligible reports whether q is zero within QuantityEpsilon.
func isNegligible(q decimal.Decimal) bool {
	return q.Abs().LessThan(QuantityEpsilon)
}

// =============================================================================
// TRANSACTION - Immutable ledger entry (append-only)
// =============================================================================

type TransactionKind string

const (
	Purchase TransactionKind = "PURCHASE"
	Sale     TransactionKind = "SALE"
)

type Transaction struct {
	ID           string
	Date         Date
	Kind         TransactionKind
	Counterparty string // supplier for purchases, customer for sales

	Quantity decimal.Decimal // grams, positive
	UnitRate decimal.Decimal // currency per gram, positive

	// Tax fields. TaxableAmount = Quantity * UnitRate,
	// GrossAmount = TaxableAmount + TaxAmount.
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	TaxableAmount decimal.Decimal
	GrossAmount   decimal.Decimal

	// Sale-only fields, stamped by the allocator at creation time and
	// never recomputed. Profit = TaxableAmount - COGS.
	COGS        decimal.Decimal
	Profit      decimal.Decimal
	Allocations []Allocation
}

// IsSale reports whether this transaction disposed of stock.
func (t Transaction) IsSale() bool { return t.Kind == Sale }

// IsPurchase reports whether this transaction acquired stock.
func (t Transaction) IsPurchase() bool { return t.Kind == Purchase }

// Allocation records a single draw from a lot during sale allocation.
type Allocation struct {
	LotID    string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// =============================================================================
// LOT - Cost batch created by a purchase, drained FIFO by sales
// =============================================================================

// Lot is created exactly once (on purchase, sharing the purchase
// transaction's id) and only ever has RemainingQuantity decremented and
// CumulativeRevenue incremented by later sale allocations. It is never
// deleted: drained lots are kept, marked with ClosedDate, so historical
// valuation and aging analysis retain full history.
type Lot struct {
	ID   string
	Date Date // purchase date, the FIFO ordering key

	OriginalQuantity  decimal.Decimal // fixed at creation
	RemainingQuantity decimal.Decimal // monotonically non-increasing
	UnitCost          decimal.Decimal // fixed at creation, never adjusted

	// ClosedDate is set the moment RemainingQuantity snaps to zero.
	ClosedDate Date

	// CumulativeRevenue is the running sum of quantityTaken * saleUnitRate
	// across all sales that drew from this lot. Diagnostic only; it plays
	// no part in cost calculation.
	CumulativeRevenue decimal.Decimal
}

// Open reports whether the lot still has stock.
func (l Lot) Open() bool { return !isNegligible(l.RemainingQuantity) }

// Value returns the remaining quantity priced at cost.
func (l Lot) Value() decimal.Decimal {
	return l.RemainingQuantity.Mul(l.UnitCost)
}

// TotalRemaining sums remaining quantity across lots. This is the single
// source of truth for on-hand stock.
func TotalRemaining(lots []Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.RemainingQuantity)
	}
	return total
}
