package mongodb

import (
	"context"
	"fmt"

	"github.com/hsdfat8/telbill/internal/config"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var _ ports.DatabaseAdapter = (*MongoDBAdapter)(nil)

// MongoDBAdapter owns the MongoDB client and the ledger repository
type MongoDBAdapter struct {
	client     *mongo.Client
	db         *mongo.Database
	config     config.MongoDBConfig
	ledgerRepo ports.LedgerRepository
}

// NewMongoDBAdapter creates a new MongoDB database adapter
func NewMongoDBAdapter(cfg config.MongoDBConfig) *MongoDBAdapter {
	return &MongoDBAdapter{config: cfg}
}

// Connect establishes a connection, verifies it and creates indexes
func (a *MongoDBAdapter) Connect(ctx context.Context) error {
	if a.config.URI == "" {
		return fmt.Errorf("mongodb uri is required")
	}

	clientOpts := options.Client().
		ApplyURI(a.config.URI).
		SetReadPreference(readpref.Primary())
	if a.config.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(a.config.ConnectTimeout)
		clientOpts.SetServerSelectionTimeout(a.config.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	a.client = client
	a.db = client.Database(a.config.Database)
	a.ledgerRepo = NewLedgerRepository(a.db)

	if err = a.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the database connection
func (a *MongoDBAdapter) Disconnect(ctx context.Context) error {
	if a.client != nil {
		return a.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks if the database connection is alive
func (a *MongoDBAdapter) Ping(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("database not connected")
	}
	return a.client.Ping(ctx, nil)
}

// GetType returns the database type
func (a *MongoDBAdapter) GetType() ports.DatabaseType {
	return ports.DatabaseTypeMongoDB
}

// LedgerRepository returns the ledger repository
func (a *MongoDBAdapter) LedgerRepository() ports.LedgerRepository {
	return a.ledgerRepo
}

// HealthCheck performs a health check on the database
func (a *MongoDBAdapter) HealthCheck(ctx context.Context) error {
	if err := a.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	if _, err := a.db.ListCollectionNames(ctx, bson.M{}); err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}
	return nil
}

// GetConnectionStats returns what the driver exposes about the connection
func (a *MongoDBAdapter) GetConnectionStats() ports.ConnectionStats {
	return ports.ConnectionStats{
		OpenConnections:  -1, // MongoDB driver doesn't expose this easily
		IdleConnections:  -1,
		DatabaseType:     string(ports.DatabaseTypeMongoDB),
		ConnectionString: a.config.Database, // Don't expose full URI
		Healthy:          a.Ping(context.Background()) == nil,
	}
}

// createIndexes creates the ledger lookup index
func (a *MongoDBAdapter) createIndexes(ctx context.Context) error {
	_, err := a.db.Collection(LedgerCollection).Indexes().CreateMany(ctx, ledgerIndexes())
	if err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}
	return nil
}

func ledgerIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "customer_id", Value: 1},
				{Key: "recorded_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("customer_recorded_at"),
		},
	}
}
