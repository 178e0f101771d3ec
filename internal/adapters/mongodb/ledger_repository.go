package mongodb

import (
	"context"
	"fmt"

	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LedgerCollection holds one document per accepted payment, keyed by receipt id
const LedgerCollection = "payment_ledger"

// ledgerRepository implements the LedgerRepository interface using MongoDB
type ledgerRepository struct {
	collection *mongo.Collection
}

// NewLedgerRepository creates a new MongoDB ledger repository
func NewLedgerRepository(db *mongo.Database) ports.LedgerRepository {
	return newLedgerRepository(db.Collection(LedgerCollection))
}

func newLedgerRepository(collection *mongo.Collection) *ledgerRepository {
	return &ledgerRepository{collection: collection}
}

// Record inserts an entry; the receipt id is the document _id
func (r *ledgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("receipt %s: %w", entry.ReceiptID, ports.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// ledgerSort orders newest first; _id breaks timestamp ties so pages never overlap
var ledgerSort = bson.D{{Key: "recorded_at", Value: -1}, {Key: "_id", Value: -1}}

// ListByCustomer retrieves entries for a customer, newest first
func (r *ledgerRepository) ListByCustomer(ctx context.Context, customerID string, offset, limit int) ([]*models.LedgerEntry, error) {
	opts := options.Find().
		SetSort(ledgerSort).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*models.LedgerEntry{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	return entries, nil
}
