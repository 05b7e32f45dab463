/*
Package report derives aggregate analytics from the ledger.

PURPOSE:
  Pure reducers over the transaction and lot collections: stock aging,
  supplier price statistics, customer behavior classification, inventory
  turnover, risk alerts, and the daily profit trend. Nothing in this
  package mutates ledger state.

TOTALITY:
  Every function is defined for every input, including empty collections,
  and returns zero-valued results rather than failing. Divisions guard
  their denominator: a zero-grams day yields zero profit-per-gram, a
  zero-taxable alert window simply does not trigger.

FILTERING:
  Callers choose the date range and optional counterparty substring and
  pass pre-filtered slices; the Filter helper below implements the common
  case.

SEE ALSO:
  - aging.go, parties.go, turnover.go, alerts.go, trend.go
*/
package report

import (
	"strings"

	"github.com/aurum/bullion-engine/ledger"
)

// =============================================================================
// FILTER - Date range and counterparty selection
// =============================================================================

// Filter selects transactions by inclusive date range, kind, and a
// case-insensitive counterparty substring. Zero dates mean unbounded;
// empty kind or search means no constraint.
type Filter struct {
	From   ledger.Date
	To     ledger.Date
	Kind   ledger.TransactionKind
	Search string
}

// Apply returns the transactions matching the filter, in input order.
func (f Filter) Apply(txs []ledger.Transaction) []ledger.Transaction {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []ledger.Transaction
	for _, tx := range txs {
		if !f.From.IsZero() && tx.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && tx.Date.After(f.To) {
			continue
		}
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(tx.Counterparty), needle) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
