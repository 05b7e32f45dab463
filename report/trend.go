package report

import (
	"github.com/aurum/bullion-engine/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// DAILY PROFIT TREND
// =============================================================================

type DailyProfit struct {
	Date          ledger.Date
	Profit        decimal.Decimal
	GramsSold     decimal.Decimal
	ProfitPerGram decimal.Decimal // zero on days with no sales
}

// DailyTrend produces one row per calendar day in [from, to] inclusive,
// summing sale profit and grams for that day. The full transaction set is
// passed in and filtered per day, so the trend is insensitive to how the
// caller range-filtered elsewhere. Zero-gram days report zero
// profit-per-gram rather than faulting.
func DailyTrend(txs []ledger.Transaction, from, to ledger.Date) []DailyProfit {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil
	}

	var trend []DailyProfit
	for day := from; day.BeforeOrEqual(to); day = day.AddDays(1) {
		row := DailyProfit{
			Date:          day,
			Profit:        decimal.Zero,
			GramsSold:     decimal.Zero,
			ProfitPerGram: decimal.Zero,
		}
		for _, tx := range txs {
			if tx.IsSale() && tx.Date.Equal(day) {
				row.Profit = row.Profit.Add(tx.Profit)
				row.GramsSold = row.GramsSold.Add(tx.Quantity)
			}
		}
		if row.GramsSold.IsPositive() {
			row.ProfitPerGram = row.Profit.Div(row.GramsSold)
		}
		trend = append(trend, row)
	}
	return trend
}
