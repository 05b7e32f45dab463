/*
store.go - Persistence interface for the two entity collections

PURPOSE:
  Defines the boundary between the engine and its persistence
  collaborator. The snapshot is the full collection each time - there is
  no incremental diff format. Hosts call Save after every successful
  mutation and Load once at startup, handing the result to Book.Restore.

IMPLEMENTATIONS:
  - ledger/store: in-memory (tests/dev)
  - store/sqlite: SQLite-backed

SEE ALSO:
  - book.go: Restore pairs with Load
*/
package ledger

import "context"

// Store persists full snapshots of the transaction and lot collections.
type Store interface {
	// Save replaces the persisted snapshot with the given collections.
	// All-or-nothing: a failed save leaves the previous snapshot intact.
	Save(ctx context.Context, txs []Transaction, lots []Lot) error

	// Load returns the persisted collections. Empty slices (not an
	// error) when nothing has been saved yet.
	Load(ctx context.Context) ([]Transaction, []Lot, error)

	// Reset removes the persisted snapshot entirely.
	Reset(ctx context.Context) error
}
