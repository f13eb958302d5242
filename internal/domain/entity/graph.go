package entity

import "time"

// AccountView is one account as returned by graph queries, with its
// per-account aggregates. Connections, Transactions and TotalAmount are
// computed over the account's entire TRANSFERS_TO edge set unless the reader
// is configured to scope them to the filtered subgraph.
type AccountView struct {
	ID            string    `json:"id"`
	Key           string    `json:"identifier"`
	Kind          Kind      `json:"entity_type"`
	Holder        string    `json:"account_holder,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	PriorityScore int       `json:"priority_score"`
	Connections   int64     `json:"connections"`
	Transactions  int64     `json:"transactions"`
	TotalAmount   float64   `json:"total_amount"`
	LastUpdate    time.Time `json:"last_update,omitempty"`
	OSSKey        string    `json:"oss_key,omitempty"`
	ClusterID     string    `json:"cluster_id,omitempty"`
}

// Transfer is one directed TRANSFERS_TO edge between two accounts. Parallel
// edges between the same pair are distinct transfers.
type Transfer struct {
	FromID    string    `json:"from_id"`
	ToID      string    `json:"to_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	Reference string    `json:"reference,omitempty"`
}

// TransferInput is a request to append one transfer edge, resolved by
// identifying key across all account kinds.
type TransferInput struct {
	FromKey   string    `json:"from_identifier"`
	ToKey     string    `json:"to_identifier"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Synthetic bool      `json:"-"`
	RunID     string    `json:"-"`
}

// SiteCluster groups the matching accounts featured by one site.
type SiteCluster struct {
	SiteURL  string         `json:"site_url"`
	SiteName string         `json:"site_name,omitempty"`
	Accounts []*AccountView `json:"entities"`
}

// GraphView is the self-contained filtered subgraph: clusters, standalone
// accounts, and every transfer edge whose both endpoints were returned.
// TotalTransfers counts edges across the whole store, not just this view.
type GraphView struct {
	Clusters       []*SiteCluster `json:"clusters"`
	Standalone     []*AccountView `json:"standalone_entities"`
	Transfers      []*Transfer    `json:"transactions"`
	TotalEntities  int            `json:"total_entities"`
	TotalTransfers int64          `json:"total_transactions"`
	Unavailable    bool           `json:"unavailable,omitempty"`
}

// AccountDetail is the full neighborhood of one account.
type AccountDetail struct {
	Account   *AccountView   `json:"entity"`
	Incoming  []*Transfer    `json:"incoming_transfers"`
	Outgoing  []*Transfer    `json:"outgoing_transfers"`
	Neighbors []*AccountView `json:"neighbor_entities"`
	Sites     []string       `json:"featuring_sites"`
}

// KindStats summarizes one account kind across the store.
type KindStats struct {
	Kind        Kind    `json:"entity_type"`
	Entities    int64   `json:"entity_count"`
	Transfers   int64   `json:"transaction_count"`
	AvgPriority float64 `json:"avg_priority"`
	MinPriority int64   `json:"min_priority"`
	MaxPriority int64   `json:"max_priority"`
}

// UpsertSummary reports the outcome of one site batch.
type UpsertSummary struct {
	SiteURL string `json:"site_url"`
	Stored  int    `json:"stored"`
	Dropped int    `json:"dropped"`
	Failed  int    `json:"failed"`
}

// TopologySummary reports one synthetic network generation run.
type TopologySummary struct {
	RunID         string `json:"run_id"`
	Players       int    `json:"players"`
	Sites         int    `json:"sites"`
	Pooling       int    `json:"pooling"`
	AggregatorKey string `json:"aggregator_key"`
	Transfers     int    `json:"transfers"`
}
