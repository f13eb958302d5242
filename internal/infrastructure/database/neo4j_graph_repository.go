package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/domain/repository"
	"suspicious-account-graph/internal/infrastructure/config"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4JGraphRepository implements GraphRepository interface
type Neo4JGraphRepository struct {
	client *Neo4JClient
	config *config.GraphConfig
	logger *logger.Logger
}

// NewNeo4JGraphRepository creates a new Neo4J graph repository
func NewNeo4JGraphRepository(client *Neo4JClient, cfg *config.GraphConfig, logger *logger.Logger) repository.GraphRepository {
	return &Neo4JGraphRepository{
		client: client,
		config: cfg,
		logger: logger.WithComponent("neo4j-graph-repo"),
	}
}

// accountLabelPredicate restricts a node bound as `entity` to the five
// account labels, keeping Site nodes out of account scans.
func accountLabelPredicate() string {
	labels := make([]string, 0, len(entity.AllKinds()))
	for _, k := range entity.AllKinds() {
		labels = append(labels, "entity:"+k.Label())
	}
	return "(" + strings.Join(labels, " OR ") + ")"
}

// Query runs the three-phase read: clustered accounts grouped by featuring
// site, standalone accounts, then the transfer edges internal to the matched
// set. Aggregates come from the node's whole edge set in global mode, or are
// recomputed from the returned edges when scoped to the view.
func (r *Neo4JGraphRepository) Query(ctx context.Context, filter *entity.Filter) (*entity.GraphView, error) {
	if !r.client.IsConnected(ctx) {
		return nil, entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	whereClause, params := CompileFilter(filter)

	view := &entity.GraphView{
		Clusters:   []*entity.SiteCluster{},
		Standalone: []*entity.AccountView{},
		Transfers:  []*entity.Transfer{},
	}
	clusterIndex := map[string]*entity.SiteCluster{}
	seen := map[string]*entity.AccountView{}

	// Phase 1: accounts featured by a site, grouped per site.
	clusteredQuery := fmt.Sprintf(`
		MATCH (site:Site)-[:FEATURES]->(entity)
		WHERE %s
		OPTIONAL MATCH (entity)-[t:TRANSFERS_TO]-(other)
		WITH site, entity,
			count(DISTINCT other) as connections,
			count(t) as transactions,
			sum(coalesce(t.amount, 0)) as total_amount
		RETURN site.url, site.name, elementId(entity), labels(entity), properties(entity),
			connections, transactions, total_amount
		ORDER BY site.url
	`, whereClause)

	err := r.collect(ctx, session, clusteredQuery, params, func(values []any) {
		siteURL, _ := values[0].(string)
		siteName, _ := values[1].(string)
		account := decodeAccountView(values[2:])
		if account == nil {
			return
		}
		seen[account.ID] = account

		cluster, ok := clusterIndex[siteURL]
		if !ok {
			cluster = &entity.SiteCluster{SiteURL: siteURL, SiteName: siteName}
			clusterIndex[siteURL] = cluster
			view.Clusters = append(view.Clusters, cluster)
		}
		cluster.Accounts = append(cluster.Accounts, account)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query clustered entities: %w", err)
	}

	// Phase 2: matching accounts no site features.
	standaloneQuery := fmt.Sprintf(`
		MATCH (entity)
		WHERE %s AND NOT (:Site)-[:FEATURES]->(entity) AND %s
		OPTIONAL MATCH (entity)-[t:TRANSFERS_TO]-(other)
		WITH entity,
			count(DISTINCT other) as connections,
			count(t) as transactions,
			sum(coalesce(t.amount, 0)) as total_amount
		RETURN elementId(entity), labels(entity), properties(entity),
			connections, transactions, total_amount
	`, accountLabelPredicate(), whereClause)

	err = r.collect(ctx, session, standaloneQuery, params, func(values []any) {
		account := decodeAccountView(values)
		if account == nil {
			return
		}
		seen[account.ID] = account
		view.Standalone = append(view.Standalone, account)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query standalone entities: %w", err)
	}

	// Phase 3: transfer edges with both endpoints in the matched set.
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		edgeQuery := `
			MATCH (from)-[t:TRANSFERS_TO]->(to)
			WHERE elementId(from) IN $ids AND elementId(to) IN $ids
			RETURN elementId(from), elementId(to), t.amount, t.timestamp, t.reference
		`
		err = r.collect(ctx, session, edgeQuery, map[string]interface{}{"ids": ids}, func(values []any) {
			view.Transfers = append(view.Transfers, decodeTransfer(values))
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query transfers: %w", err)
		}
	}

	if !r.config.GlobalAggregates {
		scopeAggregatesToView(seen, view.Transfers)
	}

	view.TotalEntities = len(seen)

	totalTransfers, err := r.countTransfers(ctx, session)
	if err != nil {
		return nil, err
	}
	view.TotalTransfers = totalTransfers

	return view, nil
}

// AccountDetail returns one account with its transfers, neighbors and
// featuring sites.
func (r *Neo4JGraphRepository) AccountDetail(ctx context.Context, id string) (*entity.AccountDetail, error) {
	if !r.client.IsConnected(ctx) {
		return nil, entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	nodeQuery := `
		MATCH (entity)
		WHERE elementId(entity) = $id
		OPTIONAL MATCH (entity)-[t:TRANSFERS_TO]-(other)
		WITH entity,
			count(DISTINCT other) as connections,
			count(t) as transactions,
			sum(coalesce(t.amount, 0)) as total_amount
		RETURN elementId(entity), labels(entity), properties(entity),
			connections, transactions, total_amount
	`

	var account *entity.AccountView
	err := r.collect(ctx, session, nodeQuery, map[string]interface{}{"id": id}, func(values []any) {
		account = decodeAccountView(values)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load entity %s: %w", id, err)
	}
	if account == nil {
		return nil, fmt.Errorf("entity %s: %w", id, entity.ErrEntityNotFound)
	}

	detail := &entity.AccountDetail{
		Account:   account,
		Incoming:  []*entity.Transfer{},
		Outgoing:  []*entity.Transfer{},
		Neighbors: []*entity.AccountView{},
		Sites:     []string{},
	}

	outgoingQuery := `
		MATCH (entity)-[t:TRANSFERS_TO]->(to)
		WHERE elementId(entity) = $id
		RETURN elementId(entity), elementId(to), t.amount, t.timestamp, t.reference
	`
	err = r.collect(ctx, session, outgoingQuery, map[string]interface{}{"id": id}, func(values []any) {
		detail.Outgoing = append(detail.Outgoing, decodeTransfer(values))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load outgoing transfers: %w", err)
	}

	incomingQuery := `
		MATCH (from)-[t:TRANSFERS_TO]->(entity)
		WHERE elementId(entity) = $id
		RETURN elementId(from), elementId(entity), t.amount, t.timestamp, t.reference
	`
	err = r.collect(ctx, session, incomingQuery, map[string]interface{}{"id": id}, func(values []any) {
		detail.Incoming = append(detail.Incoming, decodeTransfer(values))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load incoming transfers: %w", err)
	}

	neighborQuery := `
		MATCH (entity)-[:TRANSFERS_TO]-(neighbor)
		WHERE elementId(entity) = $id
		WITH DISTINCT neighbor
		OPTIONAL MATCH (neighbor)-[t:TRANSFERS_TO]-(other)
		WITH neighbor,
			count(DISTINCT other) as connections,
			count(t) as transactions,
			sum(coalesce(t.amount, 0)) as total_amount
		RETURN elementId(neighbor), labels(neighbor), properties(neighbor),
			connections, transactions, total_amount
	`
	err = r.collect(ctx, session, neighborQuery, map[string]interface{}{"id": id}, func(values []any) {
		if neighbor := decodeAccountView(values); neighbor != nil {
			detail.Neighbors = append(detail.Neighbors, neighbor)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load neighbors: %w", err)
	}

	siteQuery := `
		MATCH (site:Site)-[:FEATURES]->(entity)
		WHERE elementId(entity) = $id
		RETURN site.url
		ORDER BY site.url
	`
	err = r.collect(ctx, session, siteQuery, map[string]interface{}{"id": id}, func(values []any) {
		if url, ok := values[0].(string); ok {
			detail.Sites = append(detail.Sites, url)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load featuring sites: %w", err)
	}

	return detail, nil
}

// KindStats summarizes entity and transfer counts per account kind.
func (r *Neo4JGraphRepository) KindStats(ctx context.Context) ([]*entity.KindStats, error) {
	if !r.client.IsConnected(ctx) {
		return nil, entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	stats := make([]*entity.KindStats, 0, len(entity.AllKinds()))

	for _, kind := range entity.AllKinds() {
		query := fmt.Sprintf(`
			MATCH (entity:%s)
			OPTIONAL MATCH (entity)-[t:TRANSFERS_TO]-()
			RETURN count(DISTINCT entity), count(t),
				avg(coalesce(entity.priority_score, 0)),
				min(coalesce(entity.priority_score, 0)),
				max(coalesce(entity.priority_score, 0))
		`, kind.Label())

		kindStats := &entity.KindStats{Kind: kind}
		err := r.collect(ctx, session, query, nil, func(values []any) {
			kindStats.Entities, _ = values[0].(int64)
			kindStats.Transfers, _ = values[1].(int64)
			kindStats.AvgPriority = asFloat(values[2])
			kindStats.MinPriority, _ = values[3].(int64)
			kindStats.MaxPriority, _ = values[4].(int64)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load stats for %s: %w", kind, err)
		}
		stats = append(stats, kindStats)
	}

	return stats, nil
}

// ClearSynthetic removes everything the topology generator wrote: tagged
// transfer edges first, then tagged nodes with whatever still hangs off
// them. Organic data carries no synthetic tag and is untouched.
func (r *Neo4JGraphRepository) ClearSynthetic(ctx context.Context) (int64, error) {
	if !r.client.IsConnected(ctx) {
		return 0, entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	edgeQuery := `
		MATCH ()-[t:TRANSFERS_TO]->()
		WHERE t.synthetic = true
		DELETE t
	`
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, edgeQuery, nil)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear synthetic transfers: %w", err)
	}

	nodeQuery := `
		MATCH (n)
		WHERE n.synthetic = true
		DETACH DELETE n
		RETURN count(n)
	`
	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, nodeQuery, nil)
		if err != nil {
			return nil, err
		}
		if !records.Next(ctx) {
			return int64(0), nil
		}
		return records.Record().Values[0], nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear synthetic nodes: %w", err)
	}

	removed := result.(int64)
	r.logger.Info("Cleared synthetic data", zap.Int64("nodes_removed", removed))
	return removed, nil
}

// collect runs a read query and hands each record's values to fn.
func (r *Neo4JGraphRepository) collect(ctx context.Context, session neo4j.SessionWithContext, query string, params map[string]interface{}, fn func(values []any)) error {
	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		for records.Next(ctx) {
			fn(records.Record().Values)
		}
		return nil, records.Err()
	})
	return err
}

func (r *Neo4JGraphRepository) countTransfers(ctx context.Context, session neo4j.SessionWithContext) (int64, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, `MATCH ()-[t:TRANSFERS_TO]->() RETURN count(t)`, nil)
		if err != nil {
			return nil, err
		}
		if !records.Next(ctx) {
			return int64(0), nil
		}
		return records.Record().Values[0], nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return result.(int64), nil
}

// decodeAccountView builds an AccountView from the standard record shape:
// elementId, labels, properties, connections, transactions, total_amount.
func decodeAccountView(values []any) *entity.AccountView {
	id, _ := values[0].(string)
	labels, _ := values[1].([]any)
	props, _ := values[2].(map[string]any)

	var kind entity.Kind
	for _, l := range labels {
		label, _ := l.(string)
		if k, ok := entity.KindFromLabel(label); ok {
			kind = k
			break
		}
	}
	if kind == "" {
		return nil
	}

	view := &entity.AccountView{
		ID:            id,
		Kind:          kind,
		Key:           propString(props, kind.KeyProperty()),
		Holder:        holderOf(kind, props),
		Detail:        detailOf(kind, props),
		PriorityScore: int(propInt(props, "priority_score")),
		OSSKey:        propString(props, "oss_key"),
		ClusterID:     propString(props, "cluster_id"),
	}
	if ts, ok := props["last_update"].(time.Time); ok {
		view.LastUpdate = ts
	}
	if len(values) >= 6 {
		view.Connections, _ = values[3].(int64)
		view.Transactions, _ = values[4].(int64)
		view.TotalAmount = asFloat(values[5])
	}
	return view
}

func decodeTransfer(values []any) *entity.Transfer {
	t := &entity.Transfer{}
	t.FromID, _ = values[0].(string)
	t.ToID, _ = values[1].(string)
	t.Amount = asFloat(values[2])
	if ts, ok := values[3].(time.Time); ok {
		t.Timestamp = ts
	}
	t.Reference, _ = values[4].(string)
	return t
}

// scopeAggregatesToView recomputes per-account aggregates from the edges of
// the returned view only.
func scopeAggregatesToView(accounts map[string]*entity.AccountView, transfers []*entity.Transfer) {
	for _, account := range accounts {
		account.Connections = 0
		account.Transactions = 0
		account.TotalAmount = 0
	}
	peers := map[string]map[string]bool{}
	for _, t := range transfers {
		for _, pair := range [][2]string{{t.FromID, t.ToID}, {t.ToID, t.FromID}} {
			account, ok := accounts[pair[0]]
			if !ok {
				continue
			}
			if peers[pair[0]] == nil {
				peers[pair[0]] = map[string]bool{}
			}
			if !peers[pair[0]][pair[1]] {
				peers[pair[0]][pair[1]] = true
				account.Connections++
			}
			account.Transactions++
			account.TotalAmount += t.Amount
		}
	}
}

func holderOf(kind entity.Kind, props map[string]any) string {
	switch kind {
	case entity.KindBankAccount:
		return propString(props, "account_holder")
	case entity.KindEWallet:
		return propString(props, "owner_name")
	case entity.KindQris:
		return propString(props, "merchant_name")
	}
	return ""
}

func detailOf(kind entity.Kind, props map[string]any) string {
	switch kind {
	case entity.KindBankAccount:
		return propString(props, "bank_name")
	case entity.KindCryptoWallet:
		return propString(props, "currency")
	case entity.KindEWallet:
		return propString(props, "provider")
	case entity.KindPhoneNumber:
		return propString(props, "carrier")
	case entity.KindQris:
		return propString(props, "category")
	}
	return ""
}

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func propInt(props map[string]any, key string) int64 {
	switch v := props[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}
