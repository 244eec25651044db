package usecase

import (
	"context"

	"github.com/seedora/registry"
	"github.com/seedora/registry/internal/domain"
)

// ContentStore wraps the content-addressed pinning service. Implementations
// fail with domain.StorageError; content is publicly retrievable at the
// returned gateway URL immediately on success.
type ContentStore interface {
	StoreFile(ctx context.Context, name string, data []byte, metadata map[string]string) (registry.ContentReference, error)
	StoreJSON(ctx context.Context, doc map[string]any, metadata map[string]string) (registry.ContentReference, error)
	Status(ctx context.Context, cid string) (domain.PinStatus, error)
}

// Ledger wraps the blockchain node. PrepareAssetCreate fetches fresh network
// parameters on every call. WaitForConfirmation polls up to the given number
// of rounds and fails with domain.ConfirmationTimeoutError past the bound.
type Ledger interface {
	PrepareAssetCreate(ctx context.Context, owner, contentURL, assetName string) (registry.UnsignedTransaction, error)
	Submit(ctx context.Context, signed []byte) (string, error)
	WaitForConfirmation(ctx context.Context, txID string, rounds uint64) error
}

// RecordRepository persists registration records. Insert is all-or-nothing
// and fails with domain.PersistenceError carrying the transaction id.
type RecordRepository interface {
	Insert(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	GetByID(ctx context.Context, id string) (domain.Registration, error)
}

// EventPublisher fans out confirmed registrations to the realtime feed.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event registry.Event) error
}
