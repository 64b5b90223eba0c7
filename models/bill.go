package models

import "time"

// CurrentBillID keys the single bill document. The storefront tracks one
// running total at a time; every checkout cycle overwrites it.
const CurrentBillID = "current"

type Bill struct {
	ID        string    `bson:"_id" json:"-"`
	TotalBill float64   `bson:"totalBill" json:"totalBill"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}
