/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All engine error types in one place. Hosts (HTTP handlers, CLIs) map
  these to their own surfaces with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Stock errors - a sale cannot be covered by the open lots
  2. Validation errors - malformed or locked-out inputs
  3. Store errors - persistence failures (defined by implementations)

PROPAGATION CONTRACT:
  The allocator either fully succeeds or fully fails: when any error is
  returned, no transaction was appended and no lot was mutated. Callers may
  always rely on this. Aggregation functions never fail; zero denominators
  yield zero-valued results, not errors.

SEE ALSO:
  - allocator.go: Returns ErrInsufficientStock
  - book.go: Returns ValidationError before the allocator runs
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientStock is returned when a sale requests more than the
	// total remaining lot quantity (within ShortfallEpsilon). The whole
	// sale is rejected; nothing is committed.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrValidation is returned for malformed inputs: missing fields,
	// non-positive quantity or rate, zero dates.
	ErrValidation = errors.New("validation failed")

	// ErrLockedPeriod is returned when a transaction is dated before the
	// configured lock threshold.
	ErrLockedPeriod = errors.New("period is locked")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError provides details about a stock shortage.
type InsufficientStockError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %sg, requested %sg, short %sg",
		e.Available, e.Requested, e.Requested.Sub(e.Available))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Shortfall returns how many grams the request exceeds availability by.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// ValidationError identifies which input field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// LockedPeriodError reports a transaction dated inside the locked range.
type LockedPeriodError struct {
	Date       Date
	LockedUpTo Date
}

func (e *LockedPeriodError) Error() string {
	return fmt.Sprintf("date %s falls in locked period (locked up to %s)", e.Date, e.LockedUpTo)
}

func (e *LockedPeriodError) Unwrap() error { return ErrLockedPeriod }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than an internal failure. Hosts map these to 4xx responses.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrLockedPeriod)
}
