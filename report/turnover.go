package report

import (
	"github.com/aurum/bullion-engine/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TURNOVER - How fast does stock rotate?
// =============================================================================

type Turnover struct {
	From ledger.Date
	To   ledger.Date

	TotalCOGS         decimal.Decimal
	AvgInventoryValue decimal.Decimal // mean of start and end valuations
	TurnoverRatio     decimal.Decimal // COGS / avg value, 0 if undefined
	AvgDaysToSell     decimal.Decimal // daysInRange / ratio, 0 if undefined
}

// ComputeTurnover sums COGS over sales in [from, to] and divides by the
// average of the replayed inventory valuations at the range boundaries.
// Both valuations come from the pure replayer, so the computation never
// reads live lot state. Zero denominators yield zero results.
func ComputeTurnover(txs []ledger.Transaction, from, to ledger.Date) Turnover {
	t := Turnover{
		From:              from,
		To:                to,
		TotalCOGS:         decimal.Zero,
		AvgInventoryValue: decimal.Zero,
		TurnoverRatio:     decimal.Zero,
		AvgDaysToSell:     decimal.Zero,
	}

	for _, tx := range txs {
		if tx.IsSale() && tx.Date.AfterOrEqual(from) && tx.Date.BeforeOrEqual(to) {
			t.TotalCOGS = t.TotalCOGS.Add(tx.COGS)
		}
	}

	startValue := ledger.ValueAsOf(txs, from)
	endValue := ledger.ValueAsOf(txs, to)
	t.AvgInventoryValue = startValue.Add(endValue).Div(decimal.NewFromInt(2))

	if t.AvgInventoryValue.IsPositive() {
		t.TurnoverRatio = t.TotalCOGS.Div(t.AvgInventoryValue)
	}
	if t.TurnoverRatio.IsPositive() {
		days := ledger.DaysBetween(from, to)
		t.AvgDaysToSell = decimal.NewFromInt(int64(days)).Div(t.TurnoverRatio)
	}
	return t
}
