package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"suspicious-account-graph/internal/domain/entity"
)

func newIngestFixture() (*IngestApplicationService, *fakeSiteRepo, *fakeAccountRepo, *fakeTransferRepo) {
	sites := newFakeSiteRepo()
	accounts := newFakeAccountRepo()
	transfers := newFakeTransferRepo()
	svc := NewIngestApplicationService(sites, accounts, transfers, testLogger()).(*IngestApplicationService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, sites, accounts, transfers
}

func TestUpsertSiteDataStoresValidAccounts(t *testing.T) {
	svc, sites, accounts, _ := newIngestFixture()

	result := &entity.ExtractionResult{
		SiteURL: "https://bet.example/promo",
		BankAccounts: []*entity.BankAccount{
			{AccountNumber: "111", BankName: "BCA", AccountHolder: "Budi"},
		},
		EWallets: []*entity.EWallet{
			{WalletID: "0812-ovo", Provider: "OVO"},
		},
	}

	summary, err := svc.UpsertSiteData(context.Background(), result)
	if err != nil {
		t.Fatalf("UpsertSiteData failed: %v", err)
	}
	if summary.Stored != 2 || summary.Dropped != 0 || summary.Failed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.SiteURL != "https://bet.example" {
		t.Errorf("expected normalized site url, got %q", summary.SiteURL)
	}
	if _, ok := sites.sites["https://bet.example"]; !ok {
		t.Error("site node was not written")
	}
	if len(accounts.accounts) != 2 {
		t.Errorf("expected 2 account nodes, got %d", len(accounts.accounts))
	}
	if !accounts.featured["https://bet.example"][accountID(entity.KindBankAccount, "111")] {
		t.Error("bank account was not linked to the site")
	}
}

func TestUpsertSiteDataDropsInvalidAndContinues(t *testing.T) {
	svc, _, accounts, _ := newIngestFixture()

	result := &entity.ExtractionResult{
		SiteURL: "https://bet.example",
		BankAccounts: []*entity.BankAccount{
			{AccountNumber: "111", BankName: "BCA", AccountHolder: "Budi"},
			{AccountNumber: "", BankName: "BRI", AccountHolder: "Siti"},
		},
		CryptoWallets: []*entity.CryptoWallet{
			{WalletAddress: "0xabc"}, // missing currency
		},
	}

	summary, err := svc.UpsertSiteData(context.Background(), result)
	if err != nil {
		t.Fatalf("UpsertSiteData failed: %v", err)
	}
	if summary.Stored != 1 || summary.Dropped != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(accounts.accounts) != 1 {
		t.Errorf("expected only the valid account stored, got %d", len(accounts.accounts))
	}
}

func TestUpsertSiteDataAllInvalid(t *testing.T) {
	svc, sites, _, _ := newIngestFixture()

	result := &entity.ExtractionResult{
		SiteURL: "https://bet.example",
		BankAccounts: []*entity.BankAccount{
			{BankName: "BCA"},
		},
	}

	_, err := svc.UpsertSiteData(context.Background(), result)
	if !errors.Is(err, entity.ErrNoValidData) {
		t.Fatalf("expected ErrNoValidData, got %v", err)
	}
	if len(sites.sites) != 0 {
		t.Error("site must not be written when the whole batch is invalid")
	}
}

func TestUpsertSiteDataEmptyBatchWritesSite(t *testing.T) {
	svc, sites, _, _ := newIngestFixture()

	// a crawl can legitimately find a site with no accounts on it
	result := &entity.ExtractionResult{SiteURL: "https://bet.example"}

	summary, err := svc.UpsertSiteData(context.Background(), result)
	if err != nil {
		t.Fatalf("UpsertSiteData failed: %v", err)
	}
	if summary.Stored != 0 || summary.Dropped != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, ok := sites.sites["https://bet.example"]; !ok {
		t.Error("site node was not written")
	}
}

func TestUpsertSiteDataSiteWriteFailureAborts(t *testing.T) {
	svc, sites, accounts, _ := newIngestFixture()
	sites.err = entity.ErrStoreUnavailable

	result := &entity.ExtractionResult{
		SiteURL: "https://bet.example",
		BankAccounts: []*entity.BankAccount{
			{AccountNumber: "111", BankName: "BCA", AccountHolder: "Budi"},
		},
	}

	_, err := svc.UpsertSiteData(context.Background(), result)
	if !errors.Is(err, entity.ErrStoreUnavailable) {
		t.Fatalf("expected store-unavailable error, got %v", err)
	}
	if len(accounts.accounts) != 0 {
		t.Error("no account may be written after the site write fails")
	}
}

func TestUpsertSiteDataAccountWriteFailureContinues(t *testing.T) {
	svc, _, accounts, _ := newIngestFixture()
	accounts.failKeys["111"] = true

	result := &entity.ExtractionResult{
		SiteURL: "https://bet.example",
		BankAccounts: []*entity.BankAccount{
			{AccountNumber: "111", BankName: "BCA", AccountHolder: "Budi"},
			{AccountNumber: "222", BankName: "BRI", AccountHolder: "Siti"},
		},
	}

	summary, err := svc.UpsertSiteData(context.Background(), result)
	if err != nil {
		t.Fatalf("UpsertSiteData failed: %v", err)
	}
	if summary.Stored != 1 || summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestUpsertSiteDataMergePreservesAttributes(t *testing.T) {
	svc, _, accounts, _ := newIngestFixture()

	first := &entity.ExtractionResult{
		SiteURL: "https://bet.example",
		BankAccounts: []*entity.BankAccount{
			{AccountNumber: "111", BankName: "BCA", AccountHolder: "Budi", BankCode: "014"},
		},
	}
	if _, err := svc.UpsertSiteData(context.Background(), first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// re-discovery without the bank code must not blank it
	second := &entity.ExtractionResult{
		SiteURL: "https://other.example",
		BankAccounts: []*entity.BankAccount{
			{AccountNumber: "111", BankName: "BCA", AccountHolder: "Budi"},
		},
	}
	if _, err := svc.UpsertSiteData(context.Background(), second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	stored := accounts.accounts[accountID(entity.KindBankAccount, "111")]
	if stored == nil {
		t.Fatal("account missing after merge")
	}
	if stored.props["bank_code"] != "014" {
		t.Errorf("bank_code was lost on merge: %v", stored.props["bank_code"])
	}
	if len(accounts.accounts) != 1 {
		t.Errorf("re-discovery must not duplicate the node, got %d", len(accounts.accounts))
	}
	// both sites now feature the same account
	id := accountID(entity.KindBankAccount, "111")
	if !accounts.featured["https://bet.example"][id] || !accounts.featured["https://other.example"][id] {
		t.Error("account should be featured by both sites")
	}
}

func TestRecordTransferDefaults(t *testing.T) {
	svc, _, _, transfers := newIngestFixture()

	transfer, err := svc.RecordTransfer(context.Background(), &entity.TransferInput{
		FromKey: "111",
		ToKey:   "222",
		Amount:  150000,
	})
	if err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}
	if transfer.Timestamp.IsZero() {
		t.Error("timestamp should default to now")
	}
	if transfer.Reference == "" {
		t.Error("reference should default to a generated id")
	}
	if len(transfers.transfers) != 1 {
		t.Errorf("expected 1 transfer recorded, got %d", len(transfers.transfers))
	}
}

func TestRecordTransferNeverDeduplicates(t *testing.T) {
	svc, _, _, transfers := newIngestFixture()

	in := entity.TransferInput{FromKey: "111", ToKey: "222", Amount: 5000, Reference: "dup"}
	for i := 0; i < 3; i++ {
		copied := in
		if _, err := svc.RecordTransfer(context.Background(), &copied); err != nil {
			t.Fatalf("transfer %d failed: %v", i, err)
		}
	}
	if len(transfers.transfers) != 3 {
		t.Errorf("identical transfers must append, got %d edges", len(transfers.transfers))
	}
}

func TestRecordTransferUnknownKey(t *testing.T) {
	sites := newFakeSiteRepo()
	accounts := newFakeAccountRepo()
	transfers := newFakeTransferRepo("111")
	svc := NewIngestApplicationService(sites, accounts, transfers, testLogger())

	_, err := svc.RecordTransfer(context.Background(), &entity.TransferInput{
		FromKey: "111",
		ToKey:   "999",
		Amount:  100,
	})
	if !errors.Is(err, entity.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}
