// Package ports defines the interfaces (driven and driving ports)
// for the Royal Pomodoro application following hexagonal architecture
// principles. These interfaces define the contracts between the services
// layer and external infrastructure.
package ports

import (
	"context"
	"time"
)

// KeyValueStore persists opaque documents by key.
// This is a driven port (implemented by adapters).
// Writes are synchronous and last-write-wins; there are no cross-key transactions.
type KeyValueStore interface {
	// Get returns the stored value. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}

// Clock supplies the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}
