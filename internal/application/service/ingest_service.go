package service

import (
	"context"
	"fmt"
	"time"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/domain/repository"
	"suspicious-account-graph/internal/domain/service"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IngestApplicationService implements IngestService: the validated,
// partial-failure-tolerant write path for extraction results and transfers.
type IngestApplicationService struct {
	siteRepo     repository.SiteRepository
	accountRepo  repository.AccountRepository
	transferRepo repository.TransferRepository
	logger       *logger.Logger
	now          func() time.Time
}

// NewIngestApplicationService creates a new ingest application service
func NewIngestApplicationService(
	siteRepo repository.SiteRepository,
	accountRepo repository.AccountRepository,
	transferRepo repository.TransferRepository,
	logger *logger.Logger,
) service.IngestService {
	return &IngestApplicationService{
		siteRepo:     siteRepo,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		logger:       logger.WithComponent("ingest-service"),
		now:          time.Now,
	}
}

// UpsertSiteData persists one site batch. Accounts failing validation are
// dropped with a log entry and the rest of the batch proceeds; when every
// candidate fails, the site write is skipped and entity.ErrNoValidData is
// returned. A failed site write aborts the batch; a failed account write
// does not.
func (s *IngestApplicationService) UpsertSiteData(ctx context.Context, result *entity.ExtractionResult) (*entity.UpsertSummary, error) {
	now := s.now()
	site := result.Site(now)
	summary := &entity.UpsertSummary{SiteURL: site.URL}

	candidates := result.Accounts()
	valid := make([]entity.Account, 0, len(candidates))
	for _, account := range candidates {
		if err := account.Validate(); err != nil {
			summary.Dropped++
			s.logger.Warn("Dropping invalid account",
				zap.String("site", site.URL),
				zap.String("kind", string(account.Kind())),
				zap.Error(err))
			continue
		}
		valid = append(valid, account)
	}

	if len(candidates) > 0 && len(valid) == 0 {
		s.logger.Warn("Skipping batch, no valid accounts",
			zap.String("site", site.URL),
			zap.Int("candidates", len(candidates)))
		return summary, entity.ErrNoValidData
	}

	// the site node must exist before its accounts are cross-linked
	if err := s.siteRepo.Upsert(ctx, site); err != nil {
		return summary, fmt.Errorf("failed to upsert site %s: %w", site.URL, err)
	}

	for _, account := range valid {
		account.Meta().LastUpdate = now
		if err := s.accountRepo.Upsert(ctx, account); err != nil {
			summary.Failed++
			s.logger.Error("Failed to upsert account",
				zap.String("site", site.URL),
				zap.String("kind", string(account.Kind())),
				zap.String("key", account.Key()),
				zap.Error(err))
			continue
		}
		if err := s.accountRepo.EnsureFeatured(ctx, site.URL, account); err != nil {
			summary.Failed++
			s.logger.Error("Failed to link account to site",
				zap.String("site", site.URL),
				zap.String("key", account.Key()),
				zap.Error(err))
			continue
		}
		summary.Stored++
	}

	s.logger.Info("Stored site batch",
		zap.String("site", site.URL),
		zap.Int("stored", summary.Stored),
		zap.Int("dropped", summary.Dropped),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// RecordTransfer appends one transfer edge. The timestamp defaults to now and
// the reference to a generated id when the caller supplies none.
func (s *IngestApplicationService) RecordTransfer(ctx context.Context, in *entity.TransferInput) (*entity.Transfer, error) {
	if in.Timestamp.IsZero() {
		in.Timestamp = s.now()
	}
	if in.Reference == "" {
		in.Reference = uuid.NewString()
	}

	transfer, err := s.transferRepo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to record transfer %s -> %s: %w", in.FromKey, in.ToKey, err)
	}

	s.logger.Info("Recorded transfer",
		zap.String("from", in.FromKey),
		zap.String("to", in.ToKey),
		zap.Float64("amount", in.Amount))
	return transfer, nil
}
