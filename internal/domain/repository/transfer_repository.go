package repository

import (
	"context"

	"suspicious-account-graph/internal/domain/entity"
)

// TransferRepository defines the interface for TRANSFERS_TO edge operations
type TransferRepository interface {
	// Create appends one transfer edge. Keys are resolved against accounts of
	// every kind; entity.ErrEntityNotFound is returned when either side is
	// unresolvable. Edges are never merged, each call creates a new one.
	Create(ctx context.Context, in *entity.TransferInput) (*entity.Transfer, error)

	// CountAll returns the store-wide transfer edge count.
	CountAll(ctx context.Context) (int64, error)
}
