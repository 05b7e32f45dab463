/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists full snapshots of the two entity collections (transactions and
  lots). The snapshot contract is all-or-nothing: Save replaces both
  tables inside one database transaction, so a failed save leaves the
  previous snapshot intact.

KEY TABLES:
  transactions: One row per ledger entry; sale rows carry cogs, profit
                and the JSON allocation audit trail
  lots:         One row per cost lot, keyed by the purchase id

NUMERIC STORAGE:
  Decimal values are stored as TEXT and re-parsed on load, so no precision
  is lost to SQLite's float affinity.

WAL MODE:
  The database is opened with WAL for better read concurrency and crash
  recovery.

USAGE:
  store, err := sqlite.New("./data/bullion.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aurum/bullion-engine/ledger"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		party_name TEXT NOT NULL,
		quantity_grams TEXT NOT NULL,
		rate_per_gram TEXT NOT NULL,
		gst_rate TEXT NOT NULL,
		gst_amount TEXT NOT NULL,
		taxable_amount TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		cogs TEXT,
		profit TEXT,
		allocations_json TEXT,
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
	CREATE INDEX IF NOT EXISTS idx_transactions_kind ON transactions(kind);

	CREATE TABLE IF NOT EXISTS lots (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		original_quantity TEXT NOT NULL,
		remaining_quantity TEXT NOT NULL,
		cost_per_gram TEXT NOT NULL,
		closed_date TEXT,
		total_revenue TEXT NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lots_date ON lots(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SAVE - Replace the snapshot atomically
// =============================================================================

func (s *Store) Save(ctx context.Context, txs []ledger.Transaction, lots []ledger.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return err
	}
	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM lots`); err != nil {
		return err
	}

	for i, tx := range txs {
		var cogs, profit, allocations any
		if tx.Kind == ledger.Sale {
			cogs = tx.COGS.String()
			profit = tx.Profit.String()
			allocJSON, err := json.Marshal(tx.Allocations)
			if err != nil {
				return fmt.Errorf("failed to encode allocations for %s: %w", tx.ID, err)
			}
			allocations = string(allocJSON)
		}
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO transactions
			(id, date, kind, party_name, quantity_grams, rate_per_gram,
			 gst_rate, gst_amount, taxable_amount, total_amount,
			 cogs, profit, allocations_json, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.ID,
			tx.Date.String(),
			tx.Kind,
			tx.Counterparty,
			tx.Quantity.String(),
			tx.UnitRate.String(),
			tx.TaxRate.String(),
			tx.TaxAmount.String(),
			tx.TaxableAmount.String(),
			tx.GrossAmount.String(),
			cogs,
			profit,
			allocations,
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
	}

	for i, lot := range lots {
		var closed any
		if !lot.ClosedDate.IsZero() {
			closed = lot.ClosedDate.String()
		}
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO lots
			(id, date, original_quantity, remaining_quantity, cost_per_gram,
			 closed_date, total_revenue, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			lot.ID,
			lot.Date.String(),
			lot.OriginalQuantity.String(),
			lot.RemainingQuantity.String(),
			lot.UnitCost.String(),
			closed,
			lot.CumulativeRevenue.String(),
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert lot %s: %w", lot.ID, err)
		}
	}

	return sqlTx.Commit()
}

// =============================================================================
// LOAD - Read the snapshot back
// =============================================================================

func (s *Store) Load(ctx context.Context) ([]ledger.Transaction, []ledger.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, nil, err
	}
	lots, err := s.loadLots(ctx)
	if err != nil {
		return nil, nil, err
	}
	return txs, lots, nil
}

func (s *Store) loadTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, kind, party_name, quantity_grams, rate_per_gram,
		       gst_rate, gst_amount, taxable_amount, total_amount,
		       cogs, profit, allocations_json
		FROM transactions
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var (
			tx                         ledger.Transaction
			date                       string
			qty, rate, gstRate, gstAmt string
			taxable, total             string
			cogs, profit, allocations  sql.NullString
		)
		if err := rows.Scan(&tx.ID, &date, &tx.Kind, &tx.Counterparty,
			&qty, &rate, &gstRate, &gstAmt, &taxable, &total,
			&cogs, &profit, &allocations); err != nil {
			return nil, err
		}

		if tx.Date, err = ledger.ParseDate(date); err != nil {
			return nil, err
		}
		if tx.Quantity, err = parseDecimal(qty); err != nil {
			return nil, err
		}
		if tx.UnitRate, err = parseDecimal(rate); err != nil {
			return nil, err
		}
		if tx.TaxRate, err = parseDecimal(gstRate); err != nil {
			return nil, err
		}
		if tx.TaxAmount, err = parseDecimal(gstAmt); err != nil {
			return nil, err
		}
		if tx.TaxableAmount, err = parseDecimal(taxable); err != nil {
			return nil, err
		}
		if tx.GrossAmount, err = parseDecimal(total); err != nil {
			return nil, err
		}
		if cogs.Valid {
			if tx.COGS, err = parseDecimal(cogs.String); err != nil {
				return nil, err
			}
		}
		if profit.Valid {
			if tx.Profit, err = parseDecimal(profit.String); err != nil {
				return nil, err
			}
		}
		if allocations.Valid && allocations.String != "" {
			if err := json.Unmarshal([]byte(allocations.String), &tx.Allocations); err != nil {
				return nil, fmt.Errorf("failed to decode allocations for %s: %w", tx.ID, err)
			}
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *Store) loadLots(ctx context.Context) ([]ledger.Lot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, original_quantity, remaining_quantity, cost_per_gram,
		       closed_date, total_revenue
		FROM lots
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []ledger.Lot
	for rows.Next() {
		var (
			lot                 ledger.Lot
			date                string
			original, remaining string
			cost, revenue       string
			closed              sql.NullString
		)
		if err := rows.Scan(&lot.ID, &date, &original, &remaining, &cost, &closed, &revenue); err != nil {
			return nil, err
		}

		if lot.Date, err = ledger.ParseDate(date); err != nil {
			return nil, err
		}
		if lot.OriginalQuantity, err = parseDecimal(original); err != nil {
			return nil, err
		}
		if lot.RemainingQuantity, err = parseDecimal(remaining); err != nil {
			return nil, err
		}
		if lot.UnitCost, err = parseDecimal(cost); err != nil {
			return nil, err
		}
		if lot.CumulativeRevenue, err = parseDecimal(revenue); err != nil {
			return nil, err
		}
		if closed.Valid && closed.String != "" {
			if lot.ClosedDate, err = ledger.ParseDate(closed.String); err != nil {
				return nil, err
			}
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// =============================================================================
// RESET - Wipe the snapshot
// =============================================================================

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return err
	}
	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM lots`); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored decimal %q: %w", s, err)
	}
	return d, nil
}
