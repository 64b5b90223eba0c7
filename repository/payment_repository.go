package repository

import (
	"context"
	"time"

	"github.com/Aaenoor/eco-market-backend/models"

	"gorm.io/gorm"
)

// PaymentRepository persists the audit row for each checkout cycle. Status
// updates only apply while the row is still in the created state, so a
// terminal status can never be overwritten by a late or repeated callback.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Payment, error)
	MarkExecuted(ctx context.Context, providerPaymentID, payerEmail string) error
	MarkFailed(ctx context.Context, providerPaymentID, reason string) error
	MarkCanceled(ctx context.Context, providerPaymentID string) error
}

type gormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepository{db: db}
}

func (r *gormPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepository) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepository) MarkExecuted(ctx context.Context, providerPaymentID, payerEmail string) error {
	now := time.Now().UTC()
	return r.markStatus(ctx, providerPaymentID, map[string]interface{}{
		"status":      models.PaymentStatusExecuted,
		"payer_email": payerEmail,
		"executed_at": &now,
	})
}

func (r *gormPaymentRepository) MarkFailed(ctx context.Context, providerPaymentID, reason string) error {
	return r.markStatus(ctx, providerPaymentID, map[string]interface{}{
		"status":         models.PaymentStatusFailed,
		"failure_reason": reason,
	})
}

func (r *gormPaymentRepository) MarkCanceled(ctx context.Context, providerPaymentID string) error {
	return r.markStatus(ctx, providerPaymentID, map[string]interface{}{
		"status": models.PaymentStatusCanceled,
	})
}

func (r *gormPaymentRepository) markStatus(ctx context.Context, providerPaymentID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("provider_payment_id = ? AND status = ?", providerPaymentID, models.PaymentStatusCreated).
		Updates(updates).Error
}
