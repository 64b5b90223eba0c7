package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Aaenoor/eco-market-backend/apperrors"
	"github.com/Aaenoor/eco-market-backend/gateway"
	"github.com/Aaenoor/eco-market-backend/models"
	"github.com/Aaenoor/eco-market-backend/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultCurrency = "USD"

// executionClaimTTL bounds how long a success callback holds its claim on a
// provider payment id. PayPal payments expire well within this window.
const executionClaimTTL = 24 * time.Hour

// CheckoutService drives one checkout cycle: bill upsert, payment creation
// with the approval redirect, execution on the provider callback, history
// persistence and the outcome notification.
type CheckoutService interface {
	SetTotalBill(ctx context.Context, amount float64) (*models.Bill, error)
	InitiatePayment(ctx context.Context) (string, error)
	CompletePayment(ctx context.Context, paymentID, payerID string) (*models.OrderHistory, error)
	CancelPayment(ctx context.Context, paymentID string)
}

type checkoutService struct {
	bills    repository.BillRepository
	payments repository.PaymentRepository
	history  repository.OrderHistoryRepository
	idem     repository.IdempotencyStore
	gateway  gateway.PaymentGateway
	notifier Notifier
	logger   *zap.Logger
}

func NewCheckoutService(
	bills repository.BillRepository,
	payments repository.PaymentRepository,
	history repository.OrderHistoryRepository,
	idem repository.IdempotencyStore,
	gw gateway.PaymentGateway,
	notifier Notifier,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		bills:    bills,
		payments: payments,
		history:  history,
		idem:     idem,
		gateway:  gw,
		notifier: notifier,
		logger:   logger,
	}
}

// SetTotalBill overwrites the running total for the current checkout cycle.
// Repeated calls simply overwrite: last write wins.
func (s *checkoutService) SetTotalBill(ctx context.Context, amount float64) (*models.Bill, error) {
	bill, err := s.bills.Upsert(ctx, amount)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return bill, nil
}

// InitiatePayment opens a payment at the gateway for the current bill and
// returns the approval URL the payer must be redirected to. Without a bill
// the gateway is never called.
func (s *checkoutService) InitiatePayment(ctx context.Context) (string, error) {
	bill, err := s.bills.Current(ctx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", apperrors.ErrNoBill
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	total := formatAmount(bill.TotalBill)
	created, err := s.gateway.CreatePayment(ctx, total, defaultCurrency)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrGateway, err)
	}

	payment := &models.Payment{
		ID:                uuid.New(),
		ProviderPaymentID: created.PaymentID,
		Amount:            total,
		Currency:          defaultCurrency,
		Status:            models.PaymentStatusCreated,
		ApprovalURL:       &created.ApprovalURL,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		// The provider payment already exists, so the checkout can still
		// finish; we only lose the audit row.
		s.logger.Warn("failed to persist payment audit row",
			zap.String("provider_payment_id", created.PaymentID),
			zap.Error(err),
		)
	}

	s.logger.Info("payment initiated",
		zap.String("provider_payment_id", created.PaymentID),
		zap.String("amount", total),
	)
	return created.ApprovalURL, nil
}

// CompletePayment executes a previously approved payment. Only on a
// successful capture is a history entry written, and every recorded value
// comes from the gateway's response. A duplicate callback for the same
// payment id is rejected before reaching the gateway.
func (s *checkoutService) CompletePayment(ctx context.Context, paymentID, payerID string) (*models.OrderHistory, error) {
	claimed, err := s.idem.Begin(ctx, paymentID, executionClaimTTL)
	if err != nil {
		// Redis being down should not block a paying customer; continue
		// and rely on the provider's own already-executed rejection.
		s.logger.Warn("idempotency store unavailable", zap.Error(err))
		claimed = true
	}
	if !claimed {
		return nil, apperrors.Wrap(apperrors.ErrGateway,
			fmt.Errorf("payment %s already executed", paymentID))
	}

	result, err := s.gateway.ExecutePayment(ctx, paymentID, payerID)
	if err != nil {
		s.releaseClaim(ctx, paymentID)
		s.markFailed(ctx, paymentID, err)
		return nil, apperrors.Wrap(apperrors.ErrGateway, err)
	}

	entry := &models.OrderHistory{
		CustomerName:    result.CustomerName(),
		Email:           result.PayerEmail,
		Amount:          result.Amount,
		ShippingAddress: result.ShippingAddress,
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.markFailed(ctx, paymentID, err)
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	if err := s.payments.MarkExecuted(ctx, paymentID, result.PayerEmail); err != nil {
		s.logger.Warn("failed to mark payment executed",
			zap.String("provider_payment_id", paymentID),
			zap.Error(err),
		)
	}

	if err := s.notifier.NotifySuccess(ctx, entry); err != nil {
		s.logger.Warn("success notification failed",
			zap.String("provider_payment_id", paymentID),
			zap.Error(err),
		)
	}

	s.logger.Info("payment executed",
		zap.String("provider_payment_id", paymentID),
		zap.String("amount", result.Amount),
		zap.String("customer", entry.CustomerName),
	)
	return entry, nil
}

// CancelPayment handles the provider's cancel redirect: mark the audit row
// when the payment id is known and send the failure notification. Nothing
// here can fail the request; the payer already sees the cancel page.
func (s *checkoutService) CancelPayment(ctx context.Context, paymentID string) {
	if paymentID != "" {
		if err := s.payments.MarkCanceled(ctx, paymentID); err != nil {
			s.logger.Warn("failed to mark payment canceled",
				zap.String("provider_payment_id", paymentID),
				zap.Error(err),
			)
		}
	}

	if err := s.notifier.NotifyFailure(ctx); err != nil {
		s.logger.Warn("failure notification failed", zap.Error(err))
	}
}

func (s *checkoutService) releaseClaim(ctx context.Context, paymentID string) {
	if err := s.idem.Clear(ctx, paymentID); err != nil {
		s.logger.Warn("failed to release execution claim",
			zap.String("provider_payment_id", paymentID),
			zap.Error(err),
		)
	}
}

func (s *checkoutService) markFailed(ctx context.Context, paymentID string, cause error) {
	if err := s.payments.MarkFailed(ctx, paymentID, cause.Error()); err != nil {
		s.logger.Warn("failed to mark payment failed",
			zap.String("provider_payment_id", paymentID),
			zap.Error(err),
		)
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
