/*
replay.go - Point-in-time valuation by pure replay

PURPOSE:
  Computes total inventory value as of an arbitrary past date without
  reading or mutating the live lot collection. Every transaction dated on
  or before the cutoff is replayed, oldest first, against a fresh scratch
  list of {quantity, cost} pairs: purchases append a pair, sales consume
  from the front with pure FIFO queue semantics.

KEY INSIGHT:
  This is an independent simulation, not a read of persisted lot state.
  Later mutations to the live ledger cannot change the result for an
  earlier cutoff, because only transactions dated <= cutoff participate.

IDEMPOTENCE:
  ValueAsOf is a pure function: identical inputs give identical results
  regardless of call order or prior calls. Turnover computation relies on
  this, calling it twice (start and end of period).

SEE ALSO:
  - allocator.go: consumeFIFO, the shared walk primitive
  - report/turnover.go: Calls this at both period boundaries
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// scratchLot is a transient {quantity, cost} pair used only during replay.
type scratchLot struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// ValueAsOf returns the total inventory value (remaining quantity priced
// at acquisition cost) as of the end of day cutoff, derived purely from
// the transaction history. The input slice is not modified.
func ValueAsOf(txs []Transaction, cutoff Date) decimal.Decimal {
	pairs := replayUpTo(txs, cutoff)

	value := decimal.Zero
	for _, p := range pairs {
		value = value.Add(p.Quantity.Mul(p.UnitCost))
	}
	return value
}

// StockAsOf returns the on-hand quantity as of the cutoff, by the same
// replay. Useful for host-level sanity displays.
func StockAsOf(txs []Transaction, cutoff Date) decimal.Decimal {
	pairs := replayUpTo(txs, cutoff)

	stock := decimal.Zero
	for _, p := range pairs {
		stock = stock.Add(p.Quantity)
	}
	return stock
}

// replayUpTo replays transactions dated <= cutoff, ascending by date
// (stable for same-day entries), and returns the surviving scratch pairs.
func replayUpTo(txs []Transaction, cutoff Date) []scratchLot {
	replayed := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.BeforeOrEqual(cutoff) {
			replayed = append(replayed, tx)
		}
	}
	sort.SliceStable(replayed, func(i, j int) bool {
		return replayed[i].Date.Before(replayed[j].Date)
	})

	var pairs []scratchLot
	for _, tx := range replayed {
		switch tx.Kind {
		case Purchase:
			pairs = append(pairs, scratchLot{Quantity: tx.Quantity, UnitCost: tx.UnitRate})
		case Sale:
			consumeFIFO(len(pairs), tx.Quantity,
				func(i int) decimal.Decimal { return pairs[i].Quantity },
				func(i int, amount decimal.Decimal) {
					pairs[i].Quantity = pairs[i].Quantity.Sub(amount)
					if pairs[i].Quantity.LessThan(QuantityEpsilon) {
						pairs[i].Quantity = decimal.Zero
					}
				})
			// Pop exhausted pairs off the front to keep queue semantics.
			for len(pairs) > 0 && pairs[0].Quantity.IsZero() {
				pairs = pairs[1:]
			}
		}
	}
	return pairs
}
