package ledger_test

import (
	"testing"
	"time"

	"github.com/aurum/bullion-engine/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) ledger.Date {
	return ledger.NewDate(2026, time.March, d)
}

func lot(id string, date ledger.Date, qty, cost string) ledger.Lot {
	q := dec(qty)
	return ledger.Lot{
		ID:                id,
		Date:              date,
		OriginalQuantity:  q,
		RemainingQuantity: q,
		UnitCost:          dec(cost),
		CumulativeRevenue: decimal.Zero,
	}
}

func decEqual(t *testing.T, want, got decimal.Decimal, label string) {
	t.Helper()
	if !want.Equal(got) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}

// =============================================================================
// FIFO CONSUMPTION
// =============================================================================

func TestAllocate_SingleLot_PartialDrain(t *testing.T) {
	// GIVEN: One lot of 100g at 6000/g
	// WHEN: Allocating a 40g sale at 6500/g
	// THEN: COGS is 240000, lot keeps 60g and stays open

	lots := []ledger.Lot{lot("p1", day(1), "100", "6000")}

	result, err := ledger.Allocate(lots, dec("40"), dec("6500"), day(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decEqual(t, dec("240000"), result.TotalCost, "total cost")
	decEqual(t, dec("60"), result.Lots[0].RemainingQuantity, "remaining")
	if !result.Lots[0].ClosedDate.IsZero() {
		t.Errorf("lot should not be closed, got closed date %s", result.Lots[0].ClosedDate)
	}
	decEqual(t, dec("260000"), result.Lots[0].CumulativeRevenue, "cumulative revenue")
}

func TestAllocate_SpillsIntoSecondLot(t *testing.T) {
	// GIVEN: 50g at 6000 (day 1) and 50g at 6200 (day 3)
	// WHEN: Allocating a 60g sale at 6500 on day 5
	// THEN: Lot 1 is fully drained and closed, lot 2 gives 10g;
	//       COGS = 50*6000 + 10*6200 = 362000

	lots := []ledger.Lot{
		lot("p1", day(1), "50", "6000"),
		lot("p2", day(3), "50", "6200"),
	}

	result, err := ledger.Allocate(lots, dec("60"), dec("6500"), day(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decEqual(t, dec("362000"), result.TotalCost, "total cost")
	decEqual(t, decimal.Zero, result.Lots[0].RemainingQuantity, "lot1 remaining")
	if !result.Lots[0].ClosedDate.Equal(day(5)) {
		t.Errorf("lot1 should be closed on sale date, got %v", result.Lots[0].ClosedDate)
	}
	decEqual(t, dec("40"), result.Lots[1].RemainingQuantity, "lot2 remaining")

	if len(result.Draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(result.Draws))
	}
	if result.Draws[0].LotID != "p1" || result.Draws[1].LotID != "p2" {
		t.Errorf("draws in wrong lot order: %+v", result.Draws)
	}
	decEqual(t, dec("50"), result.Draws[0].Quantity, "draw1 quantity")
	decEqual(t, dec("10"), result.Draws[1].Quantity, "draw2 quantity")
}

func TestAllocate_LaterLotUntouchedWhileEarlierHasStock(t *testing.T) {
	// GIVEN: Two lots on day 1 and day 10
	// WHEN: Selling less than the first lot holds
	// THEN: The later lot is never touched

	lots := []ledger.Lot{
		lot("p1", day(1), "100", "6000"),
		lot("p2", day(10), "100", "6100"),
	}

	result, err := ledger.Allocate(lots, dec("99"), dec("6500"), day(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decEqual(t, dec("100"), result.Lots[1].RemainingQuantity, "later lot remaining")
	decEqual(t, decimal.Zero, result.Lots[1].CumulativeRevenue, "later lot revenue")
}

func TestAllocate_SameDate_InsertionOrderTieBreak(t *testing.T) {
	// GIVEN: Two lots with the same date, created in order p1 then p2
	// WHEN: Selling less than one lot holds
	// THEN: p1 (earlier insertion) drains first

	lots := []ledger.Lot{
		lot("p1", day(1), "50", "6000"),
		lot("p2", day(1), "50", "6200"),
	}

	result, err := ledger.Allocate(lots, dec("30"), dec("6500"), day(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decEqual(t, dec("20"), result.Lots[0].RemainingQuantity, "p1 remaining")
	decEqual(t, dec("50"), result.Lots[1].RemainingQuantity, "p2 remaining")
	decEqual(t, dec("180000"), result.TotalCost, "cost from p1 only")
}

func TestAllocate_SkipsDrainedLots(t *testing.T) {
	// GIVEN: A drained lot ahead of an open one
	// WHEN: Allocating
	// THEN: The drained lot is skipped, the open one funds the sale

	drained := lot("p1", day(1), "50", "6000")
	drained.RemainingQuantity = decimal.Zero
	drained.ClosedDate = day(2)

	lots := []ledger.Lot{drained, lot("p2", day(3), "50", "6200")}

	result, err := ledger.Allocate(lots, dec("10"), dec("6500"), day(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decEqual(t, dec("62000"), result.TotalCost, "cost from p2")
	decEqual(t, dec("40"), result.Lots[1].RemainingQuantity, "p2 remaining")
}

// =============================================================================
// EPSILON BOUNDARIES
// =============================================================================

func TestAllocate_NearZeroRemainder_SnapsToZeroAndCloses(t *testing.T) {
	// GIVEN: A 10g lot
	// WHEN: Selling 9.99995g, leaving 0.00005g (below the closure epsilon)
	// THEN: The lot snaps to exactly zero and is closed

	lots := []ledger.Lot{lot("p1", day(1), "10", "6000")}

	result, err := ledger.Allocate(lots, dec("9.99995"), dec("6500"), day(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Lots[0].RemainingQuantity.IsZero() {
		t.Errorf("expected remaining snapped to zero, got %s", result.Lots[0].RemainingQuantity)
	}
	if !result.Lots[0].ClosedDate.Equal(day(2)) {
		t.Errorf("expected closed date %s, got %v", day(2), result.Lots[0].ClosedDate)
	}
}

func TestAllocate_ShortfallWithinTolerance_Accepted(t *testing.T) {
	// GIVEN: 100g on hand
	// WHEN: Selling 100.0005g (short by less than the 0.001g tolerance)
	// THEN: The sale is treated as fully satisfied

	lots := []ledger.Lot{lot("p1", day(1), "100", "6000")}

	_, err := ledger.Allocate(lots, dec("100.0005"), dec("6500"), day(2))
	if err != nil {
		t.Fatalf("expected success within shortfall tolerance, got %v", err)
	}
}

func TestAllocate_InsufficientStock_NoMutation(t *testing.T) {
	// GIVEN: 100g on hand
	// WHEN: Selling 150g
	// THEN: ErrInsufficientStock, and the input lots are untouched

	lots := []ledger.Lot{lot("p1", day(1), "100", "6000")}

	_, err := ledger.Allocate(lots, dec("150"), dec("6500"), day(2))
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}

	decEqual(t, dec("100"), lots[0].RemainingQuantity, "input lot remaining")
	decEqual(t, decimal.Zero, lots[0].CumulativeRevenue, "input lot revenue")
}

func TestAllocate_EmptyLots_InsufficientStock(t *testing.T) {
	// GIVEN: No lots at all
	// WHEN: Selling 10g
	// THEN: ErrInsufficientStock with availability details

	_, err := ledger.Allocate(nil, dec("10"), dec("6500"), day(1))
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
}
