package service

import (
	"context"
	"errors"
	"fmt"

	"suspicious-account-graph/internal/domain/entity"

	"go.uber.org/zap"

	applogger "suspicious-account-graph/internal/infrastructure/logger"
)

func testLogger() *applogger.Logger {
	return &applogger.Logger{Logger: zap.NewNop()}
}

// fakeSiteRepo keeps site nodes in a map keyed by normalized url.
type fakeSiteRepo struct {
	sites map[string]*entity.Site
	err   error
}

func newFakeSiteRepo() *fakeSiteRepo {
	return &fakeSiteRepo{sites: map[string]*entity.Site{}}
}

func (f *fakeSiteRepo) Upsert(ctx context.Context, site *entity.Site) error {
	if f.err != nil {
		return f.err
	}
	stored, ok := f.sites[site.URL]
	if !ok {
		copied := *site
		f.sites[site.URL] = &copied
		return nil
	}
	// fill-if-present
	if site.Name != "" {
		stored.Name = site.Name
	}
	if site.OriginalURL != "" {
		stored.OriginalURL = site.OriginalURL
	}
	stored.LastExtraction = site.LastExtraction
	return nil
}

type storedAccount struct {
	kind  entity.Kind
	key   string
	props map[string]any
}

// fakeAccountRepo mirrors the merge semantics of the real store: nodes keyed
// per kind, properties patched with non-empty values only.
type fakeAccountRepo struct {
	accounts map[string]*storedAccount
	featured map[string]map[string]bool
	failKeys map[string]bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: map[string]*storedAccount{},
		featured: map[string]map[string]bool{},
		failKeys: map[string]bool{},
	}
}

func accountID(kind entity.Kind, key string) string {
	return fmt.Sprintf("%s/%s", kind, key)
}

func (f *fakeAccountRepo) Upsert(ctx context.Context, account entity.Account) error {
	if f.failKeys[account.Key()] {
		return errors.New("write failed")
	}
	id := accountID(account.Kind(), account.Key())
	stored, ok := f.accounts[id]
	if !ok {
		stored = &storedAccount{kind: account.Kind(), key: account.Key(), props: map[string]any{}}
		f.accounts[id] = stored
	}
	for k, v := range account.Properties() {
		stored.props[k] = v
	}
	return nil
}

func (f *fakeAccountRepo) EnsureFeatured(ctx context.Context, siteURL string, account entity.Account) error {
	if f.failKeys[account.Key()] {
		return errors.New("link failed")
	}
	id := accountID(account.Kind(), account.Key())
	if f.featured[siteURL] == nil {
		f.featured[siteURL] = map[string]bool{}
	}
	f.featured[siteURL][id] = true
	return nil
}

// fakeTransferRepo appends every edge; duplicates are distinct entries.
type fakeTransferRepo struct {
	transfers []*entity.TransferInput
	known     map[string]bool
	err       error
}

func newFakeTransferRepo(knownKeys ...string) *fakeTransferRepo {
	known := map[string]bool{}
	for _, k := range knownKeys {
		known[k] = true
	}
	return &fakeTransferRepo{known: known}
}

func (f *fakeTransferRepo) Create(ctx context.Context, in *entity.TransferInput) (*entity.Transfer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.known) > 0 && (!f.known[in.FromKey] || !f.known[in.ToKey]) {
		return nil, entity.ErrEntityNotFound
	}
	f.transfers = append(f.transfers, in)
	return &entity.Transfer{
		FromID:    in.FromKey,
		ToID:      in.ToKey,
		Amount:    in.Amount,
		Timestamp: in.Timestamp,
		Reference: in.Reference,
	}, nil
}

func (f *fakeTransferRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.transfers)), nil
}

// fakeGraphRepo serves canned views and records ClearSynthetic calls.
type fakeGraphRepo struct {
	view    *entity.GraphView
	detail  *entity.AccountDetail
	stats   []*entity.KindStats
	cleared int64
	err     error
}

func (f *fakeGraphRepo) Query(ctx context.Context, filter *entity.Filter) (*entity.GraphView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakeGraphRepo) AccountDetail(ctx context.Context, id string) (*entity.AccountDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.detail == nil {
		return nil, entity.ErrEntityNotFound
	}
	return f.detail, nil
}

func (f *fakeGraphRepo) KindStats(ctx context.Context) ([]*entity.KindStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func (f *fakeGraphRepo) ClearSynthetic(ctx context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.cleared, nil
}
