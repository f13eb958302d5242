package service

import (
	"context"
	"fmt"
	"time"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/domain/repository"
	"suspicious-account-graph/internal/domain/service"
	"suspicious-account-graph/internal/infrastructure/config"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TopologyApplicationService implements TopologyService: it materializes the
// planned network through the same site/account/transfer write paths used by
// organic extraction data.
type TopologyApplicationService struct {
	siteRepo     repository.SiteRepository
	accountRepo  repository.AccountRepository
	transferRepo repository.TransferRepository
	graphRepo    repository.GraphRepository
	defaultBank  string
	logger       *logger.Logger
	now          func() time.Time
}

// NewTopologyApplicationService creates a new topology application service
func NewTopologyApplicationService(
	siteRepo repository.SiteRepository,
	accountRepo repository.AccountRepository,
	transferRepo repository.TransferRepository,
	graphRepo repository.GraphRepository,
	cfg *config.TopologyConfig,
	logger *logger.Logger,
) service.TopologyService {
	return &TopologyApplicationService{
		siteRepo:     siteRepo,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		graphRepo:    graphRepo,
		defaultBank:  cfg.RequiredBank,
		logger:       logger.WithComponent("topology-service"),
		now:          time.Now,
	}
}

// Generate plans and writes one synthetic network. Node writes happen before
// edge writes; each site node is written before its pooling accounts are
// linked to it. Any write failure aborts the run (already-written synthetic
// data remains and is removable with Clear).
func (s *TopologyApplicationService) Generate(ctx context.Context, cfg service.TopologyConfig) (*entity.TopologySummary, error) {
	if cfg.RequiredBank == "" {
		cfg.RequiredBank = s.defaultBank
	}
	runID := uuid.NewString()
	plan, err := service.PlanTopology(cfg, runID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to plan topology: %w", err)
	}

	if err := s.accountRepo.Upsert(ctx, plan.Aggregator); err != nil {
		return nil, fmt.Errorf("failed to write aggregator: %w", err)
	}

	pooling := 0
	for _, planned := range plan.Sites {
		if err := s.siteRepo.Upsert(ctx, planned.Site); err != nil {
			return nil, fmt.Errorf("failed to write synthetic site %s: %w", planned.Site.URL, err)
		}
		for _, account := range planned.Pooling {
			if err := s.accountRepo.Upsert(ctx, account); err != nil {
				return nil, fmt.Errorf("failed to write pooling account %s: %w", account.Key(), err)
			}
			if err := s.accountRepo.EnsureFeatured(ctx, planned.Site.URL, account); err != nil {
				return nil, fmt.Errorf("failed to link pooling account %s: %w", account.Key(), err)
			}
			pooling++
		}
	}

	// players get no FEATURES edge and surface as standalone accounts
	for _, player := range plan.Players {
		if err := s.accountRepo.Upsert(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to write player account %s: %w", player.Key(), err)
		}
	}

	for _, transfer := range plan.Transfers {
		if _, err := s.transferRepo.Create(ctx, transfer); err != nil {
			return nil, fmt.Errorf("failed to write synthetic transfer %s -> %s: %w",
				transfer.FromKey, transfer.ToKey, err)
		}
	}

	summary := &entity.TopologySummary{
		RunID:         runID,
		Players:       len(plan.Players),
		Sites:         len(plan.Sites),
		Pooling:       pooling,
		AggregatorKey: plan.Aggregator.Key(),
		Transfers:     len(plan.Transfers),
	}
	s.logger.Info("Generated synthetic network",
		zap.String("run_id", runID),
		zap.Int("players", summary.Players),
		zap.Int("sites", summary.Sites),
		zap.Int("pooling", summary.Pooling),
		zap.Int("transfers", summary.Transfers))
	return summary, nil
}

// Clear removes every synthetic node and edge, across all generation runs.
func (s *TopologyApplicationService) Clear(ctx context.Context) (int64, error) {
	removed, err := s.graphRepo.ClearSynthetic(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear synthetic network: %w", err)
	}
	s.logger.Info("Cleared synthetic network", zap.Int64("nodes_removed", removed))
	return removed, nil
}
