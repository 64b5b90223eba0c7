package repository

import (
	"context"

	"github.com/Aaenoor/eco-market-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository stores the current (uncommitted) order per session.
type OrderRepository interface {
	Replace(ctx context.Context, order *models.Order) error
	FindAll(ctx context.Context) ([]models.Order, error)
}

type mongoOrderRepository struct {
	coll *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{coll: db.Collection("orders")}
}

// Replace swaps the session's current order in one atomic upsert keyed by
// session id, so concurrent submissions are last-write-wins without ever
// leaving two orders for the same session.
func (r *mongoOrderRepository) Replace(ctx context.Context, order *models.Order) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": order.SessionID}, order, opts)
	return err
}

func (r *mongoOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
