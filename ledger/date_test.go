package ledger_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aurum/bullion-engine/ledger"
)

func TestDate_StringIsZeroPaddedISO(t *testing.T) {
	d := ledger.NewDate(2026, time.January, 5)
	if d.String() != "2026-01-05" {
		t.Errorf("expected 2026-01-05, got %s", d.String())
	}
}

func TestParseDate(t *testing.T) {
	d, err := ledger.ParseDate("2026-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(ledger.NewDate(2026, time.March, 9)) {
		t.Errorf("parsed wrong date: %s", d)
	}

	if _, err := ledger.ParseDate("09/03/2026"); err == nil {
		t.Error("expected error for non-ISO format")
	}
	if _, err := ledger.ParseDate(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestDate_Comparisons(t *testing.T) {
	a := ledger.NewDate(2026, time.March, 1)
	b := ledger.NewDate(2026, time.March, 2)

	if !a.Before(b) || b.Before(a) {
		t.Error("Before broken")
	}
	if !b.After(a) || a.After(b) {
		t.Error("After broken")
	}
	if !a.BeforeOrEqual(a) || !a.AfterOrEqual(a) {
		t.Error("OrEqual variants should include equality")
	}
}

func TestDaysBetween(t *testing.T) {
	a := ledger.NewDate(2026, time.March, 1)
	if got := ledger.DaysBetween(a, a.AddDays(10)); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if got := ledger.DaysBetween(a.AddDays(10), a); got != -10 {
		t.Errorf("expected -10, got %d", got)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := ledger.NewDate(2026, time.March, 9)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2026-03-09"` {
		t.Errorf("expected quoted ISO form, got %s", data)
	}

	var back ledger.Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip changed date: %s", back)
	}
}

func TestDate_ZeroEncodesAsNull(t *testing.T) {
	var d ledger.Date
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("expected null, got %s", data)
	}

	var back ledger.Date
	if err := json.Unmarshal([]byte("null"), &back); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !back.IsZero() {
		t.Error("null should decode to the zero date")
	}
}
