package models

import "time"

// DefaultSessionID is used for clients that do not send an X-Session-ID
// header, which collapses them onto a single shared cart.
const DefaultSessionID = "default"

type OrderItem struct {
	ProductID string  `json:"product_id" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
}

// Order is the current (uncommitted) order for one session. Submitting a
// new order for the same session fully replaces the previous one.
type Order struct {
	SessionID string      `json:"session_id" bson:"_id"`
	Items     []OrderItem `json:"items" bson:"items"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updatedAt"`
}
