package repository

import (
	"context"
	"time"

	"github.com/Aaenoor/eco-market-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderHistoryRepository is append-only: entries are written once after a
// captured payment and never updated or deleted.
type OrderHistoryRepository interface {
	Record(ctx context.Context, entry *models.OrderHistory) error
	ListAll(ctx context.Context) ([]models.OrderHistory, error)
}

type mongoOrderHistoryRepository struct {
	coll *mongo.Collection
}

func NewMongoOrderHistoryRepository(db *mongo.Database) OrderHistoryRepository {
	return &mongoOrderHistoryRepository{coll: db.Collection("order_history")}
}

func (r *mongoOrderHistoryRepository) Record(ctx context.Context, entry *models.OrderHistory) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, entry)
	return err
}

// ListAll returns every history entry in insertion order.
func (r *mongoOrderHistoryRepository) ListAll(ctx context.Context) ([]models.OrderHistory, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.OrderHistory{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
