package services

import (
	"context"
	"time"

	"github.com/Aaenoor/eco-market-backend/apperrors"
	"github.com/Aaenoor/eco-market-backend/models"
	"github.com/Aaenoor/eco-market-backend/repository"
)

// OrderService manages the current order per session.
type OrderService interface {
	SubmitOrder(ctx context.Context, sessionID string, items []models.OrderItem) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}

type orderService struct {
	orders repository.OrderRepository
}

func NewOrderService(orders repository.OrderRepository) OrderService {
	return &orderService{orders: orders}
}

// SubmitOrder replaces the session's current order with the submitted items.
// This is a full replace, not a merge: after submitting A then B, exactly B
// remains.
func (s *orderService) SubmitOrder(ctx context.Context, sessionID string, items []models.OrderItem) (*models.Order, error) {
	if sessionID == "" {
		sessionID = models.DefaultSessionID
	}

	order := &models.Order{
		SessionID: sessionID,
		Items:     items,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.orders.Replace(ctx, order); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return orders, nil
}
