package report

import (
	"github.com/aurum/bullion-engine/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// STOCK AGING - How long has the open inventory been on hand?
// =============================================================================

// AgingBuckets is the quantity-weighted distribution of open stock by
// elapsed days since purchase.
type AgingBuckets struct {
	UpTo7    decimal.Decimal // 0-7 days
	UpTo15   decimal.Decimal // 8-15 days
	UpTo30   decimal.Decimal // 16-30 days
	Over30   decimal.Decimal // 30+ days
	TotalOpen decimal.Decimal

	// AverageAgeDays is the quantity-weighted mean age of open stock,
	// zero when nothing is open.
	AverageAgeDays decimal.Decimal
}

// StockAging buckets every lot that still has stock by its age in whole
// days relative to now, weighted by remaining quantity.
func StockAging(lots []ledger.Lot, now ledger.Date) AgingBuckets {
	b := AgingBuckets{
		UpTo7:     decimal.Zero,
		UpTo15:    decimal.Zero,
		UpTo30:    decimal.Zero,
		Over30:    decimal.Zero,
		TotalOpen: decimal.Zero,
	}

	weightedAge := decimal.Zero
	for _, lot := range lots {
		if !lot.Open() {
			continue
		}
		age := ledger.DaysBetween(lot.Date, now)
		if age < 0 {
			age = -age
		}
		qty := lot.RemainingQuantity

		switch {
		case age <= 7:
			b.UpTo7 = b.UpTo7.Add(qty)
		case age <= 15:
			b.UpTo15 = b.UpTo15.Add(qty)
		case age <= 30:
			b.UpTo30 = b.UpTo30.Add(qty)
		default:
			b.Over30 = b.Over30.Add(qty)
		}
		b.TotalOpen = b.TotalOpen.Add(qty)
		weightedAge = weightedAge.Add(qty.Mul(decimal.NewFromInt(int64(age))))
	}

	if b.TotalOpen.IsPositive() {
		b.AverageAgeDays = weightedAge.Div(b.TotalOpen)
	} else {
		b.AverageAgeDays = decimal.Zero
	}
	return b
}
