package core

import (
	"fmt"
	"sync"
	"time"
)

// Ledger is the external settlement collaborator. Settle must apply both
// payouts atomically (on-chain transfer or local ledger update) and
// acknowledge with an error on failure, in which case the bond is held in
// Revealed and the instruction retried.
type Ledger interface {
	Settle(bondID string, payout1, payout2 float64) error
}

// LedgerEntry is one acknowledged settlement instruction.
type LedgerEntry struct {
	BondID    string    `json:"bond_id"`
	Payout1   float64   `json:"payout1"`
	Payout2   float64   `json:"payout2"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryLedger is the in-process Ledger used when no chain is mirrored. It
// keeps an append-only audit log of every settlement it acknowledged.
type MemoryLedger struct {
	mu      sync.Mutex
	entries []LedgerEntry
}

// NewMemoryLedger returns an empty in-process ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// Settle records the instruction and acknowledges it.
func (l *MemoryLedger) Settle(bondID string, payout1, payout2 float64) error {
	if payout1 < 0 || payout2 < 0 {
		return fmt.Errorf("%w: negative payout for bond %s", ErrLedgerFailure, bondID)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LedgerEntry{
		BondID:    bondID,
		Payout1:   payout1,
		Payout2:   payout2,
		Timestamp: time.Now(),
	})
	return nil
}

// Entries returns a copy of the audit log.
func (l *MemoryLedger) Entries() []LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
