package repository

import (
	"context"

	"github.com/Aaenoor/eco-market-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindFeatured(ctx context.Context, limit int64) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	DeleteByName(ctx context.Context, name string) (*models.Product, error)
}

type mongoProductRepository struct {
	coll *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{coll: db.Collection("products")}
}

func (r *mongoProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindFeatured returns the first products in the catalog, used by the
// storefront landing page.
func (r *mongoProductRepository) FindFeatured(ctx context.Context, limit int64) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *mongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	_, err := r.coll.InsertOne(ctx, product)
	return err
}

// DeleteByName removes a product and returns the deleted document so the
// caller can clean up its image file.
func (r *mongoProductRepository) DeleteByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"name": name}).Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}
