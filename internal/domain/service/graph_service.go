package service

import (
	"context"

	"suspicious-account-graph/internal/domain/entity"
)

// IngestService defines the write path for extraction results
type IngestService interface {
	// UpsertSiteData validates, normalizes and persists one site batch.
	// Invalid accounts are dropped without aborting the rest; an all-invalid
	// batch returns entity.ErrNoValidData.
	UpsertSiteData(ctx context.Context, result *entity.ExtractionResult) (*entity.UpsertSummary, error)

	// RecordTransfer appends one transfer edge between two known accounts.
	RecordTransfer(ctx context.Context, in *entity.TransferInput) (*entity.Transfer, error)
}

// QueryService defines the read path over the account graph
type QueryService interface {
	// QueryGraph compiles the filter and runs the clustered, standalone and
	// edge phases. Against an unavailable store it returns an empty view
	// flagged Unavailable instead of an error.
	QueryGraph(ctx context.Context, filter *entity.Filter) (*entity.GraphView, error)

	// GetAccountDetail returns one account's full neighborhood.
	GetAccountDetail(ctx context.Context, id string) (*entity.AccountDetail, error)

	// GetKindStats summarizes the store per account kind.
	GetKindStats(ctx context.Context) ([]*entity.KindStats, error)
}

// TopologyService defines synthetic network generation
type TopologyService interface {
	// Generate builds one player/pooling/aggregator network through the same
	// write paths used for organic data.
	Generate(ctx context.Context, cfg TopologyConfig) (*entity.TopologySummary, error)

	// Clear wipes everything previous generation runs wrote.
	Clear(ctx context.Context) (int64, error)
}
