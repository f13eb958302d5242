package repository

import (
	"context"

	"suspicious-account-graph/internal/domain/entity"
)

// SiteRepository defines the interface for site node operations
type SiteRepository interface {
	// Upsert creates or merges the site node keyed by its normalized domain.
	// Attributes follow fill-if-present semantics; last_extraction is always
	// touched.
	Upsert(ctx context.Context, site *entity.Site) error
}
