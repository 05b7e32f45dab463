/*
allocator.go - FIFO lot consumption

PURPOSE:
  The central algorithm: satisfy a disposal by draining lots oldest-first,
  accumulating cost-of-goods-sold and recording which lot funded how much.

CRITICAL INVARIANTS:
  1. FIFO: a later-dated lot is never touched while an earlier lot still
     has stock; ties within a date drain in insertion order
  2. ATOMIC: the walk operates on a working copy and commits only on full
     success - a failed allocation leaves every lot untouched
  3. CLOSURE: a lot remainder below QuantityEpsilon snaps to exactly zero
     and the lot is stamped with the sale date as its ClosedDate

TWO CALLERS, ONE WALK:
  The same consumeFIFO primitive backs both the live allocator here (which
  mutates lot state on commit) and the valuation replayer (which walks a
  throwaway scratch list). See replay.go.

SEE ALSO:
  - book.go: Pre-checks availability, then calls Allocate and commits
  - replay.go: Scratch-copy replay sharing consumeFIFO
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SHARED FIFO WALK
// =============================================================================

// consumeFIFO drains n entries oldest-first until qty is satisfied.
// available reports the remaining quantity of entry i; take is invoked for
// every draw. Entries with nothing remaining are skipped. Returns the
// unsatisfied remainder, which is zero (within QuantityEpsilon it is
// snapped to exactly zero) when the disposal was fully covered.
func consumeFIFO(n int, qty decimal.Decimal, available func(i int) decimal.Decimal, take func(i int, amount decimal.Decimal)) decimal.Decimal {
	remaining := qty
	for i := 0; i < n; i++ {
		if remaining.LessThanOrEqual(QuantityEpsilon) {
			break
		}
		have := available(i)
		if !have.IsPositive() {
			continue
		}
		amount := decimal.Min(have, remaining)
		take(i, amount)
		remaining = remaining.Sub(amount)
	}
	if isNegligible(remaining) {
		return decimal.Zero
	}
	return remaining
}

// =============================================================================
// ALLOCATION RESULT
// =============================================================================

// AllocationResult is what a successful FIFO allocation produced: the lots
// after draining (a full replacement set), the total cost attributed to
// the disposal, and the per-lot audit trail.
type AllocationResult struct {
	Lots      []Lot
	TotalCost decimal.Decimal
	Draws     []Allocation
}

// =============================================================================
// ALLOCATOR
// =============================================================================

// Allocate satisfies a disposal of qty grams at sale rate rate against the
// given lots, oldest-first. The input slice must already be sorted
// ascending by date (the Book maintains this); ties drain in slice order.
//
// The input lots are never mutated: the walk runs on a working copy and
// the drained copy is returned for the caller to commit atomically. On
// ErrInsufficientStock the caller's state is untouched by construction.
func Allocate(lots []Lot, qty, rate decimal.Decimal, saleDate Date) (AllocationResult, error) {
	work := make([]Lot, len(lots))
	copy(work, lots)

	totalCost := decimal.Zero
	var draws []Allocation

	shortfall := consumeFIFO(len(work), qty,
		func(i int) decimal.Decimal { return work[i].RemainingQuantity },
		func(i int, amount decimal.Decimal) {
			lot := &work[i]
			lot.CumulativeRevenue = lot.CumulativeRevenue.Add(amount.Mul(rate))
			lot.RemainingQuantity = lot.RemainingQuantity.Sub(amount)
			totalCost = totalCost.Add(amount.Mul(lot.UnitCost))
			draws = append(draws, Allocation{
				LotID:    lot.ID,
				Quantity: amount,
				UnitCost: lot.UnitCost,
			})
			if lot.RemainingQuantity.LessThan(QuantityEpsilon) {
				lot.RemainingQuantity = decimal.Zero
				lot.ClosedDate = saleDate
			}
		})

	if shortfall.GreaterThan(ShortfallEpsilon) {
		return AllocationResult{}, &InsufficientStockError{
			Available: TotalRemaining(lots),
			Requested: qty,
		}
	}

	return AllocationResult{Lots: work, TotalCost: totalCost, Draws: draws}, nil
}
