package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Delivery    string             `bson:"delivery" json:"delivery"`
	Warranty    string             `bson:"warranty" json:"warranty"`
	Rating      float64            `bson:"rating" json:"rating"`
	Available   bool               `bson:"available" json:"available"`
	Image       string             `bson:"image" json:"image"`
}
