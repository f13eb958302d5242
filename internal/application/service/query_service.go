package service

import (
	"context"
	"errors"
	"fmt"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/domain/repository"
	"suspicious-account-graph/internal/domain/service"
	"suspicious-account-graph/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// QueryApplicationService implements QueryService on top of the graph
// repository.
type QueryApplicationService struct {
	graphRepo repository.GraphRepository
	logger    *logger.Logger
}

// NewQueryApplicationService creates a new query application service
func NewQueryApplicationService(
	graphRepo repository.GraphRepository,
	logger *logger.Logger,
) service.QueryService {
	return &QueryApplicationService{
		graphRepo: graphRepo,
		logger:    logger.WithComponent("query-service"),
	}
}

// QueryGraph validates the filter and runs the clustered/standalone/edge
// read. An unreachable store yields an empty view flagged Unavailable so
// callers can tell it apart from a legitimately empty result.
func (s *QueryApplicationService) QueryGraph(ctx context.Context, filter *entity.Filter) (*entity.GraphView, error) {
	if filter == nil {
		filter = entity.NewFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	view, err := s.graphRepo.Query(ctx, filter)
	if err != nil {
		if errors.Is(err, entity.ErrStoreUnavailable) {
			s.logger.Warn("Graph store unavailable, returning empty view", zap.Error(err))
			return &entity.GraphView{
				Clusters:    []*entity.SiteCluster{},
				Standalone:  []*entity.AccountView{},
				Transfers:   []*entity.Transfer{},
				Unavailable: true,
			}, nil
		}
		return nil, fmt.Errorf("failed to query graph: %w", err)
	}
	return view, nil
}

// GetAccountDetail returns one account's full neighborhood.
func (s *QueryApplicationService) GetAccountDetail(ctx context.Context, id string) (*entity.AccountDetail, error) {
	detail, err := s.graphRepo.AccountDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account detail for %s: %w", id, err)
	}
	return detail, nil
}

// GetKindStats summarizes the store per account kind.
func (s *QueryApplicationService) GetKindStats(ctx context.Context) ([]*entity.KindStats, error) {
	stats, err := s.graphRepo.KindStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get kind stats: %w", err)
	}
	return stats, nil
}
