package database

import (
	"context"
	"fmt"
	"time"

	"suspicious-account-graph/internal/infrastructure/config"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// neoTime formats an instant for datetime() parameters. The layout's Z is a
// literal, so the value must be normalized to UTC first or non-UTC wall
// clocks get stored shifted by their zone offset.
func neoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// Neo4JClient handles Neo4J database operations
type Neo4JClient struct {
	driver neo4j.DriverWithContext
	config *config.Neo4JConfig
	logger *logger.Logger
}

// NewNeo4JClient creates a new Neo4J client
func NewNeo4JClient(cfg *config.Neo4JConfig, logger *logger.Logger) *Neo4JClient {
	return &Neo4JClient{
		config: cfg,
		logger: logger.WithComponent("neo4j-client"),
	}
}

// Connect connects to Neo4J database
func (n *Neo4JClient) Connect(ctx context.Context) error {
	n.logger.Info("Connecting to Neo4J database", zap.String("uri", n.config.URI))

	driver, err := neo4j.NewDriverWithContext(
		n.config.URI,
		neo4j.BasicAuth(n.config.Username, n.config.Password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = n.config.MaxConnectionPoolSize
			config.ConnectionAcquisitionTimeout = n.config.ConnectionAcquisitionTimeout
		},
	)
	if err != nil {
		n.logger.Error("Failed to create Neo4J driver", zap.Error(err))
		return fmt.Errorf("failed to create Neo4J driver: %w", err)
	}

	// Verify connectivity
	if err := driver.VerifyConnectivity(ctx); err != nil {
		n.logger.Error("Failed to verify Neo4J connectivity", zap.Error(err))
		return fmt.Errorf("failed to verify Neo4J connectivity: %w", err)
	}

	n.driver = driver
	n.logger.Info("Successfully connected to Neo4J database")

	// Setup database schema
	if err := n.setupSchema(ctx); err != nil {
		return fmt.Errorf("failed to setup schema: %w", err)
	}

	return nil
}

// Close closes the Neo4J connection
func (n *Neo4JClient) Close(ctx context.Context) error {
	if n.driver != nil {
		n.logger.Info("Closing Neo4J connection")
		return n.driver.Close(ctx)
	}
	return nil
}

// GetDriver returns the Neo4J driver
func (n *Neo4JClient) GetDriver() neo4j.DriverWithContext {
	return n.driver
}

// setupSchema creates the necessary constraints and indexes
func (n *Neo4JClient) setupSchema(ctx context.Context) error {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.config.Database,
	})
	defer session.Close(ctx)

	// Create constraints
	constraints := []string{
		"CREATE CONSTRAINT site_url IF NOT EXISTS FOR (s:Site) REQUIRE s.url IS UNIQUE",
		"CREATE CONSTRAINT bank_account_number IF NOT EXISTS FOR (a:BankAccount) REQUIRE a.account_number IS UNIQUE",
		"CREATE CONSTRAINT crypto_wallet_address IF NOT EXISTS FOR (w:CryptoWallet) REQUIRE w.wallet_address IS UNIQUE",
		"CREATE CONSTRAINT ewallet_id IF NOT EXISTS FOR (e:EWallet) REQUIRE e.wallet_id IS UNIQUE",
		"CREATE CONSTRAINT phone_number IF NOT EXISTS FOR (p:PhoneNumber) REQUIRE p.phone_number IS UNIQUE",
		"CREATE CONSTRAINT qris_code IF NOT EXISTS FOR (q:QrisCode) REQUIRE q.qris_code IS UNIQUE",
	}

	for _, constraint := range constraints {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, constraint, nil)
		})
		if err != nil {
			n.logger.Warn("Failed to create constraint", zap.String("constraint", constraint), zap.Error(err))
		}
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX bank_account_last_update IF NOT EXISTS FOR (a:BankAccount) ON (a.last_update)",
		"CREATE INDEX bank_account_priority IF NOT EXISTS FOR (a:BankAccount) ON (a.priority_score)",
		"CREATE INDEX crypto_wallet_last_update IF NOT EXISTS FOR (w:CryptoWallet) ON (w.last_update)",
		"CREATE INDEX crypto_wallet_priority IF NOT EXISTS FOR (w:CryptoWallet) ON (w.priority_score)",
		"CREATE INDEX ewallet_last_update IF NOT EXISTS FOR (e:EWallet) ON (e.last_update)",
		"CREATE INDEX ewallet_priority IF NOT EXISTS FOR (e:EWallet) ON (e.priority_score)",
		"CREATE INDEX phone_number_last_update IF NOT EXISTS FOR (p:PhoneNumber) ON (p.last_update)",
		"CREATE INDEX phone_number_priority IF NOT EXISTS FOR (p:PhoneNumber) ON (p.priority_score)",
		"CREATE INDEX qris_code_last_update IF NOT EXISTS FOR (q:QrisCode) ON (q.last_update)",
		"CREATE INDEX qris_code_priority IF NOT EXISTS FOR (q:QrisCode) ON (q.priority_score)",
		"CREATE INDEX site_last_extraction IF NOT EXISTS FOR (s:Site) ON (s.last_extraction)",
	}

	for _, index := range indexes {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, index, nil)
		})
		if err != nil {
			n.logger.Warn("Failed to create index", zap.String("index", index), zap.Error(err))
		}
	}

	n.logger.Info("Schema setup completed")
	return nil
}

// IsConnected checks if connected to Neo4J
func (n *Neo4JClient) IsConnected(ctx context.Context) bool {
	if n.driver == nil {
		return false
	}
	return n.driver.VerifyConnectivity(ctx) == nil
}
