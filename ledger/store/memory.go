// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/aurum/bullion-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	transactions []ledger.Transaction
	lots         []ledger.Lot
}

func NewMemory() *Memory {
	return &Memory{}
}

// Save replaces the snapshot. Copies defensively so later caller
// mutations cannot leak into the stored state.
func (m *Memory) Save(_ context.Context, txs []ledger.Transaction, lots []ledger.Lot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = append([]ledger.Transaction(nil), txs...)
	m.lots = append([]ledger.Lot(nil), lots...)
	return nil
}

func (m *Memory) Load(_ context.Context) ([]ledger.Transaction, []ledger.Lot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := append([]ledger.Transaction(nil), m.transactions...)
	lots := append([]ledger.Lot(nil), m.lots...)
	return txs, lots, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = nil
	m.lots = nil
	return nil
}
