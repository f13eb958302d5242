package entity

import (
	"strings"
	"time"
)

// Kind identifies one of the five financial account kinds tracked in the graph.
type Kind string

const (
	KindBankAccount  Kind = "bank_account"
	KindCryptoWallet Kind = "crypto_wallet"
	KindEWallet      Kind = "e_wallet"
	KindPhoneNumber  Kind = "phone_number"
	KindQris         Kind = "qris"
)

// AllKinds returns every known account kind.
func AllKinds() []Kind {
	return []Kind{KindBankAccount, KindCryptoWallet, KindEWallet, KindPhoneNumber, KindQris}
}

// Valid reports whether k is a known account kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBankAccount, KindCryptoWallet, KindEWallet, KindPhoneNumber, KindQris:
		return true
	}
	return false
}

// Label returns the Neo4J node label for this kind.
func (k Kind) Label() string {
	switch k {
	case KindBankAccount:
		return "BankAccount"
	case KindCryptoWallet:
		return "CryptoWallet"
	case KindEWallet:
		return "EWallet"
	case KindPhoneNumber:
		return "PhoneNumber"
	case KindQris:
		return "QrisCode"
	}
	return ""
}

// KindFromLabel maps a Neo4J node label back to its account kind.
func KindFromLabel(label string) (Kind, bool) {
	for _, k := range AllKinds() {
		if k.Label() == label {
			return k, true
		}
	}
	return "", false
}

// KeyProperty returns the node property holding the identifying key.
func (k Kind) KeyProperty() string {
	switch k {
	case KindBankAccount:
		return "account_number"
	case KindCryptoWallet:
		return "wallet_address"
	case KindEWallet:
		return "wallet_id"
	case KindPhoneNumber:
		return "phone_number"
	case KindQris:
		return "qris_code"
	}
	return ""
}

// Common carries the attributes shared by every account kind. The priority
// score is assigned externally and only defaulted on first write; the
// synthetic markers are set by the topology generator alone.
type Common struct {
	PriorityScore int       `json:"priority_score"`
	LastUpdate    time.Time `json:"last_update"`
	OSSKey        string    `json:"oss_key,omitempty"`
	ClusterID     string    `json:"cluster_id,omitempty"`
	Synthetic     bool      `json:"synthetic,omitempty"`
	RunID         string    `json:"run_id,omitempty"`
}

// Account is the closed set of financial account records stored in the graph.
// Properties returns only the attributes that carry a value; the upsert path
// relies on that to never blank a previously stored attribute with an empty
// incoming one.
type Account interface {
	Kind() Kind
	Key() string
	Holder() string
	Validate() error
	Properties() map[string]any
	Meta() *Common
}

// BankAccount is a conventional bank account observed on a suspect site.
type BankAccount struct {
	AccountNumber  string  `json:"account_number"`
	BankName       string  `json:"bank_name"`
	AccountHolder  string  `json:"account_holder"`
	BankCode       string  `json:"bank_code,omitempty"`
	AccountType    string  `json:"account_type,omitempty"`
	MinTransfer    float64 `json:"min_transfer,omitempty"`
	MaxTransfer    float64 `json:"max_transfer,omitempty"`
	ProcessingTime string  `json:"processing_time,omitempty"`
	Common
}

func (a *BankAccount) Kind() Kind     { return KindBankAccount }
func (a *BankAccount) Key() string    { return a.AccountNumber }
func (a *BankAccount) Holder() string { return a.AccountHolder }
func (a *BankAccount) Meta() *Common  { return &a.Common }

func (a *BankAccount) Validate() error {
	switch {
	case blank(a.AccountNumber):
		return &ValidationError{Kind: KindBankAccount, Field: "account_number"}
	case blank(a.BankName):
		return &ValidationError{Kind: KindBankAccount, Field: "bank_name"}
	case blank(a.AccountHolder):
		return &ValidationError{Kind: KindBankAccount, Field: "account_holder"}
	}
	return nil
}

func (a *BankAccount) Properties() map[string]any {
	p := map[string]any{}
	putString(p, "bank_name", a.BankName)
	putString(p, "account_holder", a.AccountHolder)
	putString(p, "bank_code", a.BankCode)
	putString(p, "account_type", a.AccountType)
	putFloat(p, "min_transfer", a.MinTransfer)
	putFloat(p, "max_transfer", a.MaxTransfer)
	putString(p, "processing_time", a.ProcessingTime)
	a.Common.fill(p)
	return p
}

// CryptoWallet is a cryptocurrency wallet address.
type CryptoWallet struct {
	WalletAddress string `json:"wallet_address"`
	Currency      string `json:"currency"`
	Notes         string `json:"notes,omitempty"`
	Common
}

func (w *CryptoWallet) Kind() Kind     { return KindCryptoWallet }
func (w *CryptoWallet) Key() string    { return w.WalletAddress }
func (w *CryptoWallet) Holder() string { return "" }
func (w *CryptoWallet) Meta() *Common  { return &w.Common }

func (w *CryptoWallet) Validate() error {
	switch {
	case blank(w.WalletAddress):
		return &ValidationError{Kind: KindCryptoWallet, Field: "wallet_address"}
	case blank(w.Currency):
		return &ValidationError{Kind: KindCryptoWallet, Field: "currency"}
	}
	return nil
}

func (w *CryptoWallet) Properties() map[string]any {
	p := map[string]any{}
	putString(p, "currency", w.Currency)
	putString(p, "notes", w.Notes)
	w.Common.fill(p)
	return p
}

// EWallet is a hosted e-money account (OVO, DANA, GoPay and the like).
type EWallet struct {
	WalletID    string `json:"wallet_id"`
	Provider    string `json:"provider"`
	PhoneNumber string `json:"phone_number,omitempty"`
	OwnerName   string `json:"owner_name,omitempty"`
	Common
}

func (w *EWallet) Kind() Kind     { return KindEWallet }
func (w *EWallet) Key() string    { return w.WalletID }
func (w *EWallet) Holder() string { return w.OwnerName }
func (w *EWallet) Meta() *Common  { return &w.Common }

func (w *EWallet) Validate() error {
	if blank(w.WalletID) {
		return &ValidationError{Kind: KindEWallet, Field: "wallet_id"}
	}
	return nil
}

func (w *EWallet) Properties() map[string]any {
	p := map[string]any{}
	putString(p, "provider", w.Provider)
	putString(p, "phone_number", w.PhoneNumber)
	putString(p, "owner_name", w.OwnerName)
	w.Common.fill(p)
	return p
}

// PhoneNumber is a payment-linked phone number.
type PhoneNumber struct {
	Number  string `json:"phone_number"`
	Carrier string `json:"carrier,omitempty"`
	Common
}

func (n *PhoneNumber) Kind() Kind     { return KindPhoneNumber }
func (n *PhoneNumber) Key() string    { return n.Number }
func (n *PhoneNumber) Holder() string { return "" }
func (n *PhoneNumber) Meta() *Common  { return &n.Common }

func (n *PhoneNumber) Validate() error {
	if blank(n.Number) {
		return &ValidationError{Kind: KindPhoneNumber, Field: "phone_number"}
	}
	return nil
}

func (n *PhoneNumber) Properties() map[string]any {
	p := map[string]any{}
	putString(p, "carrier", n.Carrier)
	n.Common.fill(p)
	return p
}

// QrisCode is a merchant QR payment code.
type QrisCode struct {
	Code         string `json:"qris_code"`
	MerchantName string `json:"merchant_name,omitempty"`
	Category     string `json:"category,omitempty"`
	Common
}

func (q *QrisCode) Kind() Kind     { return KindQris }
func (q *QrisCode) Key() string    { return q.Code }
func (q *QrisCode) Holder() string { return q.MerchantName }
func (q *QrisCode) Meta() *Common  { return &q.Common }

func (q *QrisCode) Validate() error {
	if blank(q.Code) {
		return &ValidationError{Kind: KindQris, Field: "qris_code"}
	}
	return nil
}

func (q *QrisCode) Properties() map[string]any {
	p := map[string]any{}
	putString(p, "merchant_name", q.MerchantName)
	putString(p, "category", q.Category)
	q.Common.fill(p)
	return p
}

func (c *Common) fill(p map[string]any) {
	putString(p, "oss_key", c.OSSKey)
	putString(p, "cluster_id", c.ClusterID)
	if c.Synthetic {
		p["synthetic"] = true
		putString(p, "run_id", c.RunID)
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func putString(p map[string]any, key, value string) {
	if value != "" {
		p[key] = value
	}
}

func putFloat(p map[string]any, key string, value float64) {
	if value != 0 {
		p[key] = value
	}
}
