// Package snapshot defines the persistence port for the two
// whole-collection snapshots (items and transactions) and its backends.
// The core depends only on the Store interface, so the substrate can be
// swapped between SQLite, plain files, or anything else key-value shaped.
package snapshot

import "context"

// Fixed logical names of the two persisted snapshots.
const (
	KeyItems        = "pedagogical_items"
	KeyTransactions = "pedagogical_transactions"
)

// Store persists named snapshots. Save replaces the full value for a
// key; Load returns (nil, nil) when the key has never been saved.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
