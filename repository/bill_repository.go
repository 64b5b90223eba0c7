package repository

import (
	"context"
	"time"

	"github.com/Aaenoor/eco-market-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BillRepository holds the single running total for the checkout in
// progress. ErrNoBill conditions surface as mongo.ErrNoDocuments and are
// mapped by the service layer.
type BillRepository interface {
	Upsert(ctx context.Context, amount float64) (*models.Bill, error)
	Current(ctx context.Context) (*models.Bill, error)
}

type mongoBillRepository struct {
	coll *mongo.Collection
}

func NewMongoBillRepository(db *mongo.Database) BillRepository {
	return &mongoBillRepository{coll: db.Collection("bills")}
}

// Upsert overwrites the single bill document in one atomic write, creating
// it on the first checkout cycle. There is never more than one bill.
func (r *mongoBillRepository) Upsert(ctx context.Context, amount float64) (*models.Bill, error) {
	bill := &models.Bill{
		ID:        models.CurrentBillID,
		TotalBill: amount,
		UpdatedAt: time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": models.CurrentBillID}, bill, opts); err != nil {
		return nil, err
	}
	return bill, nil
}

func (r *mongoBillRepository) Current(ctx context.Context) (*models.Bill, error) {
	var bill models.Bill
	if err := r.coll.FindOne(ctx, bson.M{"_id": models.CurrentBillID}).Decode(&bill); err != nil {
		return nil, err
	}
	return &bill, nil
}
