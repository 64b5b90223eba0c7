package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderHistory is an immutable record of a completed purchase. It is written
// exactly once, after the gateway confirms the payment was captured, and all
// of its fields come from the gateway's authoritative response.
type OrderHistory struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerName    string             `bson:"customerName" json:"customer_name"`
	Email           string             `bson:"email" json:"email"`
	Amount          string             `bson:"amount" json:"amount"`
	ShippingAddress string             `bson:"shippingAddress" json:"shipping_address"`
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
}
