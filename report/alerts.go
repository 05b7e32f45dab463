package report

import (
	"fmt"

	"github.com/aurum/bullion-engine/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RISK ALERTS - Stagnant stock and margin erosion
// =============================================================================

type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "HIGH"
	SeverityMedium AlertSeverity = "MEDIUM"
)

type Alert struct {
	Severity AlertSeverity
	Code     string
	Message  string
}

// recentSaleWindow is how many of the latest sales the margin alert
// inspects, in stored order.
const recentSaleWindow = 5

// Alerts inspects open-stock aging and recent sale margins.
//
// HIGH fires when any open stock has aged past 30 days. MEDIUM fires when
// the aggregate margin of the most recent sales, sum(profit) over
// sum(taxableAmount), drops below the price-sensitive threshold. A zero
// taxable sum means the condition simply does not trigger.
func Alerts(txs []ledger.Transaction, lots []ledger.Lot, now ledger.Date) []Alert {
	var alerts []Alert

	aging := StockAging(lots, now)
	if aging.Over30.IsPositive() {
		alerts = append(alerts, Alert{
			Severity: SeverityHigh,
			Code:     "aging_stock",
			Message:  fmt.Sprintf("%sg of stock has been on hand for more than 30 days", aging.Over30),
		})
	}

	var recent []ledger.Transaction
	for _, tx := range txs {
		if tx.IsSale() {
			recent = append(recent, tx)
		}
	}
	if len(recent) > recentSaleWindow {
		recent = recent[len(recent)-recentSaleWindow:]
	}

	profit := decimal.Zero
	taxable := decimal.Zero
	for _, tx := range recent {
		profit = profit.Add(tx.Profit)
		taxable = taxable.Add(tx.TaxableAmount)
	}
	if taxable.IsPositive() {
		margin := profit.Div(taxable).Mul(decimal.NewFromInt(100))
		if margin.LessThan(priceSensitivePct) {
			alerts = append(alerts, Alert{
				Severity: SeverityMedium,
				Code:     "thin_margin",
				Message:  fmt.Sprintf("average margin of the last %d sales is %s%%", len(recent), margin.StringFixed(2)),
			})
		}
	}

	return alerts
}
