package report

import (
	"sort"

	"github.com/aurum/bullion-engine/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SUPPLIER STATS - Purchase-side price behavior per counterparty
// =============================================================================

type SupplierStats struct {
	Name          string
	TotalGrams    decimal.Decimal
	AverageRate   decimal.Decimal // quantity-weighted
	MinRate       decimal.Decimal
	MaxRate       decimal.Decimal
	RateSpread    decimal.Decimal // max - min, the volatility measure
	PurchaseCount int
}

// Suppliers groups purchase transactions by counterparty and reports
// volume and rate statistics, sorted descending by volume. Volatility is
// the observed rate spread (max - min), not a statistical deviation.
func Suppliers(txs []ledger.Transaction) []SupplierStats {
	byName := make(map[string]*SupplierStats)
	weightedRate := make(map[string]decimal.Decimal)

	for _, tx := range txs {
		if !tx.IsPurchase() {
			continue
		}
		s, ok := byName[tx.Counterparty]
		if !ok {
			s = &SupplierStats{
				Name:       tx.Counterparty,
				TotalGrams: decimal.Zero,
				MinRate:    tx.UnitRate,
				MaxRate:    tx.UnitRate,
			}
			byName[tx.Counterparty] = s
			weightedRate[tx.Counterparty] = decimal.Zero
		}
		s.TotalGrams = s.TotalGrams.Add(tx.Quantity)
		s.PurchaseCount++
		weightedRate[tx.Counterparty] = weightedRate[tx.Counterparty].Add(tx.Quantity.Mul(tx.UnitRate))
		if tx.UnitRate.LessThan(s.MinRate) {
			s.MinRate = tx.UnitRate
		}
		if tx.UnitRate.GreaterThan(s.MaxRate) {
			s.MaxRate = tx.UnitRate
		}
	}

	out := make([]SupplierStats, 0, len(byName))
	for name, s := range byName {
		if s.TotalGrams.IsPositive() {
			s.AverageRate = weightedRate[name].Div(s.TotalGrams)
		} else {
			s.AverageRate = decimal.Zero
		}
		s.RateSpread = s.MaxRate.Sub(s.MinRate)
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalGrams.GreaterThan(out[j].TotalGrams)
	})
	return out
}

// =============================================================================
// CUSTOMER STATS - Sale-side profitability and behavior per counterparty
// =============================================================================

type CustomerStats struct {
	Name               string
	TransactionCount   int
	TotalGrams         decimal.Decimal
	TotalSpend         decimal.Decimal // gross
	ProfitContribution decimal.Decimal
	MarginPercent      decimal.Decimal // profit / spend * 100
	AvgGramsPerTx      decimal.Decimal
	AvgSellingRate     decimal.Decimal // realized, quantity-weighted
	AvgProfitPerGram   decimal.Decimal
	BehaviorPattern    string
}

// Behavior classification thresholds.
var (
	bulkBuyerGrams   = decimal.NewFromInt(100) // avg grams per transaction
	frequentTxCount  = 5
	priceSensitivePct = decimal.RequireFromString("0.5")
	highMarginPct     = decimal.RequireFromString("2.0")
)

// Customers groups sale transactions by counterparty, derives
// profitability metrics and a behavior tag, and sorts descending by
// profit contribution.
func Customers(txs []ledger.Transaction) []CustomerStats {
	byName := make(map[string]*CustomerStats)
	revenue := make(map[string]decimal.Decimal) // taxable, for realized rate

	for _, tx := range txs {
		if !tx.IsSale() {
			continue
		}
		c, ok := byName[tx.Counterparty]
		if !ok {
			c = &CustomerStats{
				Name:               tx.Counterparty,
				TotalGrams:         decimal.Zero,
				TotalSpend:         decimal.Zero,
				ProfitContribution: decimal.Zero,
			}
			byName[tx.Counterparty] = c
			revenue[tx.Counterparty] = decimal.Zero
		}
		c.TransactionCount++
		c.TotalGrams = c.TotalGrams.Add(tx.Quantity)
		c.TotalSpend = c.TotalSpend.Add(tx.GrossAmount)
		c.ProfitContribution = c.ProfitContribution.Add(tx.Profit)
		revenue[tx.Counterparty] = revenue[tx.Counterparty].Add(tx.TaxableAmount)
	}

	out := make([]CustomerStats, 0, len(byName))
	for name, c := range byName {
		if c.TotalSpend.IsPositive() {
			c.MarginPercent = c.ProfitContribution.Div(c.TotalSpend).Mul(decimal.NewFromInt(100))
		} else {
			c.MarginPercent = decimal.Zero
		}
		if c.TransactionCount > 0 {
			c.AvgGramsPerTx = c.TotalGrams.Div(decimal.NewFromInt(int64(c.TransactionCount)))
		}
		if c.TotalGrams.IsPositive() {
			c.AvgSellingRate = revenue[name].Div(c.TotalGrams)
			c.AvgProfitPerGram = c.ProfitContribution.Div(c.TotalGrams)
		} else {
			c.AvgSellingRate = decimal.Zero
			c.AvgProfitPerGram = decimal.Zero
		}
		c.BehaviorPattern = classifyBehavior(*c)
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProfitContribution.GreaterThan(out[j].ProfitContribution)
	})
	return out
}

// classifyBehavior derives the behavior tag: a base classification by
// volume/frequency, then at most one margin suffix.
func classifyBehavior(c CustomerStats) string {
	tag := "Regular"
	switch {
	case c.AvgGramsPerTx.GreaterThan(bulkBuyerGrams):
		tag = "Bulk Buyer"
	case c.TransactionCount > frequentTxCount:
		tag = "Frequent"
	}

	switch {
	case c.MarginPercent.LessThan(priceSensitivePct):
		tag += " (Price Sensitive)"
	case c.MarginPercent.GreaterThan(highMarginPct):
		tag += " (High Margin)"
	}
	return tag
}
