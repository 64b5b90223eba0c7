package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment status values. A payment starts as created and moves to exactly
// one terminal status; terminal rows are never updated again.
const (
	PaymentStatusCreated  = "created"
	PaymentStatusExecuted = "executed"
	PaymentStatusFailed   = "failed"
	PaymentStatusCanceled = "canceled"
)

// Payment is the audit row for one checkout cycle against the gateway.
type Payment struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderPaymentID string    `gorm:"uniqueIndex;not null"`
	Amount            string    `gorm:"type:varchar(20);not null"`
	Currency          string    `gorm:"type:varchar(10);not null"`
	Status            string    `gorm:"type:varchar(20);not null"`
	ApprovalURL       *string   `gorm:"type:varchar(1024)"`
	PayerEmail        *string   `gorm:"type:varchar(255)"`
	FailureReason     *string   `gorm:"type:varchar(512)"`
	ExecutedAt        *time.Time
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// Final reports whether the payment has reached a terminal status.
func (p *Payment) Final() bool {
	return p.Status == PaymentStatusExecuted ||
		p.Status == PaymentStatusFailed ||
		p.Status == PaymentStatusCanceled
}
