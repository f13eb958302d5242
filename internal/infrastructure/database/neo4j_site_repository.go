package database

import (
	"context"
	"fmt"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/domain/repository"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4JSiteRepository implements SiteRepository interface
type Neo4JSiteRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JSiteRepository creates a new Neo4J site repository
func NewNeo4JSiteRepository(client *Neo4JClient, logger *logger.Logger) repository.SiteRepository {
	return &Neo4JSiteRepository{
		client: client,
		logger: logger.WithComponent("neo4j-site-repo"),
	}
}

// Upsert creates or merges the site node keyed by its normalized domain.
// coalesce keeps stored attributes when the incoming value is empty;
// last_extraction is touched on every observation.
func (r *Neo4JSiteRepository) Upsert(ctx context.Context, site *entity.Site) error {
	if !r.client.IsConnected(ctx) {
		return entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MERGE (s:Site {url: $url})
		ON CREATE SET
			s.first_seen = datetime($last_extraction)
		SET
			s.name = CASE WHEN $name <> '' THEN $name ELSE coalesce(s.name, '') END,
			s.original_url = CASE WHEN $original_url <> '' THEN $original_url ELSE coalesce(s.original_url, '') END,
			s.language = CASE WHEN $language <> '' THEN $language ELSE coalesce(s.language, '') END,
			s.notes = CASE WHEN $notes <> '' THEN $notes ELSE coalesce(s.notes, '') END,
			s.registered = CASE WHEN $registered THEN true ELSE coalesce(s.registered, false) END,
			s.last_extraction = datetime($last_extraction)
	`
	if site.Synthetic {
		query += `
		SET s.synthetic = true, s.run_id = $run_id
		`
	}

	params := map[string]interface{}{
		"url":             site.URL,
		"name":            site.Name,
		"original_url":    site.OriginalURL,
		"language":        site.Language,
		"notes":           site.Notes,
		"registered":      site.Registered,
		"last_extraction": neoTime(site.LastExtraction),
	}
	if site.Synthetic {
		params["run_id"] = site.RunID
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})

	if err != nil {
		return fmt.Errorf("failed to upsert site %s: %w", site.URL, err)
	}

	return nil
}
