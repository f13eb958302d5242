package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/domain/repository"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4JTransferRepository implements TransferRepository interface
type Neo4JTransferRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JTransferRepository creates a new Neo4J transfer repository
func NewNeo4JTransferRepository(client *Neo4JClient, logger *logger.Logger) repository.TransferRepository {
	return &Neo4JTransferRepository{
		client: client,
		logger: logger.WithComponent("neo4j-transfer-repo"),
	}
}

// keyPredicate matches a node of any account kind by its identifying key.
// The label check keeps a key from matching on a non-identifying property of
// another kind, such as an e-wallet's linked phone_number.
func keyPredicate(alias, param string) string {
	clauses := make([]string, 0, len(entity.AllKinds()))
	for _, k := range entity.AllKinds() {
		clauses = append(clauses, fmt.Sprintf("(%s:%s AND %s.%s = $%s)", alias, k.Label(), alias, k.KeyProperty(), param))
	}
	return strings.Join(clauses, " OR ")
}

// Create appends one TRANSFERS_TO edge. CREATE, never MERGE: repeated
// transfers between the same pair are distinct facts.
func (r *Neo4JTransferRepository) Create(ctx context.Context, in *entity.TransferInput) (*entity.Transfer, error) {
	if !r.client.IsConnected(ctx) {
		return nil, entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	props := "amount: $amount, timestamp: datetime($timestamp), reference: $reference"
	if in.Synthetic {
		props += ", synthetic: true, run_id: $run_id"
	}

	query := fmt.Sprintf(`
		MATCH (from)
		WHERE %s
		MATCH (to)
		WHERE %s
		CREATE (from)-[t:TRANSFERS_TO {%s}]->(to)
		RETURN elementId(from), elementId(to), t.amount, t.timestamp, t.reference
	`, keyPredicate("from", "from_key"), keyPredicate("to", "to_key"), props)

	params := map[string]interface{}{
		"from_key":  in.FromKey,
		"to_key":    in.ToKey,
		"amount":    in.Amount,
		"timestamp": neoTime(in.Timestamp),
		"reference": in.Reference,
	}
	if in.Synthetic {
		params["run_id"] = in.RunID
	}

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		if !records.Next(ctx) {
			return nil, nil
		}
		return records.Record(), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create transfer %s -> %s: %w", in.FromKey, in.ToKey, err)
	}
	if result == nil {
		return nil, fmt.Errorf("transfer %s -> %s: %w", in.FromKey, in.ToKey, entity.ErrEntityNotFound)
	}

	values := result.(*neo4j.Record).Values

	transfer := &entity.Transfer{
		FromID:    values[0].(string),
		ToID:      values[1].(string),
		Amount:    values[2].(float64),
		Timestamp: values[3].(time.Time),
		Reference: values[4].(string),
	}

	return transfer, nil
}

// CountAll returns the store-wide transfer edge count.
func (r *Neo4JTransferRepository) CountAll(ctx context.Context) (int64, error) {
	if !r.client.IsConnected(ctx) {
		return 0, entity.ErrStoreUnavailable
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `MATCH ()-[t:TRANSFERS_TO]->() RETURN count(t)`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, query, nil)
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
