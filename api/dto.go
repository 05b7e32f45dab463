/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Field names
  follow the stable snapshot vocabulary (partyName, quantityGrams,
  ratePerGram, gstRate, ...) so exports and API payloads agree.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Handlers parse and validate; DTOs are pure data carriers. Business
  validation (positive quantities, stock coverage) lives in the ledger.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/aurum/bullion-engine/ledger"
	"github.com/aurum/bullion-engine/report"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EntryRequest is the body for recording a purchase or a sale.
type EntryRequest struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	PartyName string  `json:"partyName"`
	Quantity  float64 `json:"quantityGrams"`
	Rate      float64 `json:"ratePerGram"`
	GSTRate   float64 `json:"gstRate"`
}

// TransactionDTO represents a ledger transaction.
type TransactionDTO struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Kind          string          `json:"kind"`
	PartyName     string          `json:"partyName"`
	Quantity      string          `json:"quantityGrams"`
	Rate          string          `json:"ratePerGram"`
	GSTRate       string          `json:"gstRate"`
	GSTAmount     string          `json:"gstAmount"`
	TaxableAmount string          `json:"taxableAmount"`
	TotalAmount   string          `json:"totalAmount"`
	COGS          *string         `json:"cogs,omitempty"`
	Profit        *string         `json:"profit,omitempty"`
	Allocations   []AllocationDTO `json:"allocations,omitempty"`
}

// AllocationDTO records how much a sale drew from one lot.
type AllocationDTO struct {
	LotID    string `json:"lotId"`
	Quantity string `json:"quantityGrams"`
	UnitCost string `json:"costPerGram"`
}

// LotDTO represents a cost lot.
type LotDTO struct {
	ID                string `json:"id"`
	Date              string `json:"date"`
	OriginalQuantity  string `json:"originalQuantity"`
	RemainingQuantity string `json:"remainingQuantity"`
	CostPerGram       string `json:"costPerGram"`
	ClosedDate        string `json:"closedDate,omitempty"`
	TotalRevenue      string `json:"totalRevenue"`
}

// SummaryDTO is the dashboard projection.
type SummaryDTO struct {
	CurrentStock     string `json:"currentStockGrams"`
	InventoryValue   string `json:"inventoryValue"`
	OpenLots         int    `json:"openLots"`
	TotalPurchased   string `json:"totalPurchasedGrams"`
	TotalSold        string `json:"totalSoldGrams"`
	PurchaseOutlay   string `json:"purchaseOutlay"`
	SalesRevenue     string `json:"salesRevenue"`
	RealizedProfit   string `json:"realizedProfit"`
	TransactionCount int    `json:"transactionCount"`
}

// ValuationDTO is the point-in-time valuation response.
type ValuationDTO struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// AgingDTO is the stock-aging report.
type AgingDTO struct {
	UpTo7          string `json:"bucket0to7"`
	UpTo15         string `json:"bucket8to15"`
	UpTo30         string `json:"bucket16to30"`
	Over30         string `json:"bucket30plus"`
	TotalOpen      string `json:"totalOpenGrams"`
	AverageAgeDays string `json:"averageAgeDays"`
}

// SupplierDTO is one supplier row.
type SupplierDTO struct {
	Name          string `json:"partyName"`
	TotalGrams    string `json:"totalGrams"`
	AverageRate   string `json:"averageRate"`
	MinRate       string `json:"minRate"`
	MaxRate       string `json:"maxRate"`
	RateSpread    string `json:"volatility"`
	PurchaseCount int    `json:"purchaseCount"`
}

// CustomerDTO is one customer row.
type CustomerDTO struct {
	Name               string `json:"partyName"`
	TransactionCount   int    `json:"transactionCount"`
	TotalGrams         string `json:"totalGrams"`
	TotalSpend         string `json:"totalSpend"`
	ProfitContribution string `json:"profitContribution"`
	MarginPercent      string `json:"marginPercent"`
	AvgGramsPerTx      string `json:"avgGramsPerTransaction"`
	AvgSellingRate     string `json:"avgSellingRate"`
	AvgProfitPerGram   string `json:"avgProfitPerGram"`
	BehaviorPattern    string `json:"behaviorPattern"`
}

// TurnoverDTO is the turnover report.
type TurnoverDTO struct {
	From              string `json:"from"`
	To                string `json:"to"`
	TotalCOGS         string `json:"totalCogs"`
	AvgInventoryValue string `json:"avgInventoryValue"`
	TurnoverRatio     string `json:"turnoverRatio"`
	AvgDaysToSell     string `json:"avgDaysToSell"`
}

// AlertDTO is one risk alert.
type AlertDTO struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// DailyProfitDTO is one row of the daily trend.
type DailyProfitDTO struct {
	Date          string `json:"date"`
	Profit        string `json:"profit"`
	GramsSold     string `json:"gramsSold"`
	ProfitPerGram string `json:"profitPerGram"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:            tx.ID,
		Date:          tx.Date.String(),
		Kind:          string(tx.Kind),
		PartyName:     tx.Counterparty,
		Quantity:      tx.Quantity.String(),
		Rate:          tx.UnitRate.String(),
		GSTRate:       tx.TaxRate.String(),
		GSTAmount:     tx.TaxAmount.String(),
		TaxableAmount: tx.TaxableAmount.String(),
		TotalAmount:   tx.GrossAmount.String(),
	}
	if tx.IsSale() {
		cogs := tx.COGS.String()
		profit := tx.Profit.String()
		dto.COGS = &cogs
		dto.Profit = &profit
		for _, a := range tx.Allocations {
			dto.Allocations = append(dto.Allocations, AllocationDTO{
				LotID:    a.LotID,
				Quantity: a.Quantity.String(),
				UnitCost: a.UnitCost.String(),
			})
		}
	}
	return dto
}

func toTransactionDTOs(txs []ledger.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toLotDTO(lot ledger.Lot) LotDTO {
	dto := LotDTO{
		ID:                lot.ID,
		Date:              lot.Date.String(),
		OriginalQuantity:  lot.OriginalQuantity.String(),
		RemainingQuantity: lot.RemainingQuantity.String(),
		CostPerGram:       lot.UnitCost.String(),
		TotalRevenue:      lot.CumulativeRevenue.String(),
	}
	if !lot.ClosedDate.IsZero() {
		dto.ClosedDate = lot.ClosedDate.String()
	}
	return dto
}

func toSummaryDTO(s ledger.Summary) SummaryDTO {
	return SummaryDTO{
		CurrentStock:     s.CurrentStock.String(),
		InventoryValue:   s.InventoryValue.String(),
		OpenLots:         s.OpenLots,
		TotalPurchased:   s.TotalPurchased.String(),
		TotalSold:        s.TotalSold.String(),
		PurchaseOutlay:   s.PurchaseOutlay.String(),
		SalesRevenue:     s.SalesRevenue.String(),
		RealizedProfit:   s.RealizedProfit.String(),
		TransactionCount: s.TransactionCount,
	}
}

func toSupplierDTOs(stats []report.SupplierStats) []SupplierDTO {
	dtos := make([]SupplierDTO, len(stats))
	for i, s := range stats {
		dtos[i] = SupplierDTO{
			Name:          s.Name,
			TotalGrams:    s.TotalGrams.String(),
			AverageRate:   s.AverageRate.String(),
			MinRate:       s.MinRate.String(),
			MaxRate:       s.MaxRate.String(),
			RateSpread:    s.RateSpread.String(),
			PurchaseCount: s.PurchaseCount,
		}
	}
	return dtos
}

func toCustomerDTOs(stats []report.CustomerStats) []CustomerDTO {
	dtos := make([]CustomerDTO, len(stats))
	for i, c := range stats {
		dtos[i] = CustomerDTO{
			Name:               c.Name,
			TransactionCount:   c.TransactionCount,
			TotalGrams:         c.TotalGrams.String(),
			TotalSpend:         c.TotalSpend.String(),
			ProfitContribution: c.ProfitContribution.String(),
			MarginPercent:      c.MarginPercent.String(),
			AvgGramsPerTx:      c.AvgGramsPerTx.String(),
			AvgSellingRate:     c.AvgSellingRate.String(),
			AvgProfitPerGram:   c.AvgProfitPerGram.String(),
			BehaviorPattern:    c.BehaviorPattern,
		}
	}
	return dtos
}

func toAlertDTOs(alerts []report.Alert) []AlertDTO {
	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = AlertDTO{Severity: string(a.Severity), Code: a.Code, Message: a.Message}
	}
	return dtos
}

func toDailyProfitDTOs(trend []report.DailyProfit) []DailyProfitDTO {
	dtos := make([]DailyProfitDTO, len(trend))
	for i, d := range trend {
		dtos[i] = DailyProfitDTO{
			Date:          d.Date.String(),
			Profit:        d.Profit.String(),
			GramsSold:     d.GramsSold.String(),
			ProfitPerGram: d.ProfitPerGram.String(),
		}
	}
	return dtos
}
