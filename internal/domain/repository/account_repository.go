package repository

import (
	"context"

	"suspicious-account-graph/internal/domain/entity"
)

// AccountRepository defines the interface for account node operations
type AccountRepository interface {
	// Upsert creates or matches the account node by its kind-scoped key and
	// patches attributes with fill-if-present semantics: an empty incoming
	// value never overwrites a stored non-empty one.
	Upsert(ctx context.Context, account entity.Account) error

	// EnsureFeatured merges the FEATURES edge from the site to the account.
	// Re-discovery on the same site is a no-op.
	EnsureFeatured(ctx context.Context, siteURL string, account entity.Account) error
}
