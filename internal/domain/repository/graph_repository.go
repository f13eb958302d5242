package repository

import (
	"context"

	"suspicious-account-graph/internal/domain/entity"
)

// GraphRepository defines the read side of the graph: clustering, aggregation
// and synthetic-data cleanup.
type GraphRepository interface {
	// Query runs the three-phase read for a validated filter: clustered
	// accounts grouped by featuring site, standalone accounts, and the
	// transfer edges internal to the returned set.
	Query(ctx context.Context, filter *entity.Filter) (*entity.GraphView, error)

	// AccountDetail returns one account with its incoming/outgoing transfers,
	// neighbor accounts and featuring sites. Returns entity.ErrEntityNotFound
	// for an unknown id.
	AccountDetail(ctx context.Context, id string) (*entity.AccountDetail, error)

	// KindStats summarizes entity and transfer counts per account kind.
	KindStats(ctx context.Context) ([]*entity.KindStats, error)

	// ClearSynthetic removes every node and edge written by the topology
	// generator, leaving organic data untouched. Returns the number of nodes
	// removed.
	ClearSynthetic(ctx context.Context) (int64, error)
}
