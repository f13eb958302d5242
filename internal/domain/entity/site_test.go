package entity

import (
	"testing"
	"time"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"strips path", "https://slot-gacor.example/deposit/dana", "https://slot-gacor.example"},
		{"strips query", "http://bet.example/page?ref=123", "http://bet.example"},
		{"keeps port", "https://bet.example:8443/promo", "https://bet.example:8443"},
		{"already normalized", "https://bet.example", "https://bet.example"},
		{"schemeless falls back to raw", "bet.example/promo", "bet.example/promo"},
		{"garbage falls back to raw", "::::not a url", "::::not a url"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDomain(tt.raw); got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractionResultAccountsFlattens(t *testing.T) {
	r := &ExtractionResult{
		SiteURL:       "https://bet.example/promo",
		BankAccounts:  []*BankAccount{{AccountNumber: "1"}},
		CryptoWallets: []*CryptoWallet{{WalletAddress: "0xabc"}},
		EWallets:      []*EWallet{{WalletID: "08123"}},
		PhoneNumbers:  []*PhoneNumber{{Number: "08123"}},
		QrisCodes:     []*QrisCode{{Code: "000201"}},
	}

	accounts := r.Accounts()
	if len(accounts) != 5 {
		t.Fatalf("expected 5 accounts, got %d", len(accounts))
	}

	seen := map[Kind]bool{}
	for _, a := range accounts {
		seen[a.Kind()] = true
	}
	for _, k := range AllKinds() {
		if !seen[k] {
			t.Errorf("kind %q missing from flattened accounts", k)
		}
	}
}

func TestExtractionResultSite(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &ExtractionResult{
		SiteURL:  "https://bet.example/promo?ref=1",
		SiteName: "Bet Example",
	}

	site := r.Site(now)
	if site.URL != "https://bet.example" {
		t.Errorf("expected normalized url, got %q", site.URL)
	}
	if site.OriginalURL != "https://bet.example/promo?ref=1" {
		t.Errorf("expected original url preserved, got %q", site.OriginalURL)
	}
	if !site.LastExtraction.Equal(now) {
		t.Errorf("expected last_extraction %v, got %v", now, site.LastExtraction)
	}
}
