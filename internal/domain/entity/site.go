package entity

import (
	"net/url"
	"time"
)

// Site is one suspect website, keyed by its normalized domain. The full
// original URL is kept for audit.
type Site struct {
	URL            string    `json:"url"`
	Name           string    `json:"name,omitempty"`
	OriginalURL    string    `json:"original_url,omitempty"`
	Language       string    `json:"language,omitempty"`
	LastExtraction time.Time `json:"last_extraction"`
	Registered     bool      `json:"registered,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Synthetic      bool      `json:"synthetic,omitempty"`
	RunID          string    `json:"run_id,omitempty"`
}

// NormalizeDomain reduces a full page URL to its site-identity key
// (scheme://host), so that multiple crawled pages of one site collapse to a
// single Site node. Unparsable input is returned unchanged and becomes its
// own domain key.
func NormalizeDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

// ExtractionResult is the record handed over by the extraction collaborator:
// site metadata plus the candidate accounts found on its pages.
type ExtractionResult struct {
	SiteURL    string `json:"site_url"`
	SiteName   string `json:"site_name,omitempty"`
	Language   string `json:"language,omitempty"`
	Registered bool   `json:"registered,omitempty"`
	Notes      string `json:"notes,omitempty"`

	BankAccounts  []*BankAccount  `json:"bank_accounts,omitempty"`
	CryptoWallets []*CryptoWallet `json:"crypto_wallets,omitempty"`
	EWallets      []*EWallet      `json:"e_wallets,omitempty"`
	PhoneNumbers  []*PhoneNumber  `json:"phone_numbers,omitempty"`
	QrisCodes     []*QrisCode     `json:"qris_codes,omitempty"`
}

// Accounts flattens the per-kind candidate lists.
func (r *ExtractionResult) Accounts() []Account {
	accounts := make([]Account, 0,
		len(r.BankAccounts)+len(r.CryptoWallets)+len(r.EWallets)+len(r.PhoneNumbers)+len(r.QrisCodes))
	for _, a := range r.BankAccounts {
		accounts = append(accounts, a)
	}
	for _, w := range r.CryptoWallets {
		accounts = append(accounts, w)
	}
	for _, w := range r.EWallets {
		accounts = append(accounts, w)
	}
	for _, n := range r.PhoneNumbers {
		accounts = append(accounts, n)
	}
	for _, q := range r.QrisCodes {
		accounts = append(accounts, q)
	}
	return accounts
}

// Site builds the Site node for this result, keyed by the normalized domain.
func (r *ExtractionResult) Site(now time.Time) *Site {
	return &Site{
		URL:            NormalizeDomain(r.SiteURL),
		Name:           r.SiteName,
		OriginalURL:    r.SiteURL,
		Language:       r.Language,
		LastExtraction: now,
		Registered:     r.Registered,
		Notes:          r.Notes,
	}
}
