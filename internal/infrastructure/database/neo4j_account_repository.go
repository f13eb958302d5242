package database

import (
	"context"
	"fmt"
	"time"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/domain/repository"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4JAccountRepository implements AccountRepository interface
type Neo4JAccountRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JAccountRepository creates a new Neo4J account repository
func NewNeo4JAccountRepository(client *Neo4JClient, logger *logger.Logger) repository.AccountRepository {
	return &Neo4JAccountRepository{
		client: client,
		logger: logger.WithComponent("neo4j-account-repo"),
	}
}

// Upsert creates or matches the account node by its kind-scoped key.
// Properties() holds only non-empty values, so `+=` patches without ever
// blanking a stored attribute. The priority score is seeded on create only.
func (r *Neo4JAccountRepository) Upsert(ctx context.Context, account entity.Account) error {
	if !r.client.IsConnected(ctx) {
		return entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	kind := account.Kind()
	query := fmt.Sprintf(`
		MERGE (a:%s {%s: $key})
		ON CREATE SET
			a.priority_score = $priority_score,
			a.first_seen = datetime($now)
		SET
			a += $props,
			a.last_update = datetime($now)
	`, kind.Label(), kind.KeyProperty())

	meta := account.Meta()
	now := meta.LastUpdate
	if now.IsZero() {
		now = time.Now().UTC()
	}

	params := map[string]interface{}{
		"key":            account.Key(),
		"priority_score": meta.PriorityScore,
		"props":          account.Properties(),
		"now":            neoTime(now),
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})

	if err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", kind, account.Key(), err)
	}

	return nil
}

// EnsureFeatured merges the FEATURES edge from the site to the account.
func (r *Neo4JAccountRepository) EnsureFeatured(ctx context.Context, siteURL string, account entity.Account) error {
	if !r.client.IsConnected(ctx) {
		return entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	kind := account.Kind()
	query := fmt.Sprintf(`
		MATCH (s:Site {url: $site_url})
		MATCH (a:%s {%s: $key})
		MERGE (s)-[f:FEATURES]->(a)
		ON CREATE SET f.first_seen = datetime($now)
		SET f.last_seen = datetime($now)
	`, kind.Label(), kind.KeyProperty())

	params := map[string]interface{}{
		"site_url": siteURL,
		"key":      account.Key(),
		"now":      neoTime(time.Now()),
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})

	if err != nil {
		return fmt.Errorf("failed to link site %s to %s %s: %w", siteURL, kind, account.Key(), err)
	}

	return nil
}
