package controllers

import (
	"net/http"

	"github.com/Aaenoor/eco-market-backend/models"
	"github.com/Aaenoor/eco-market-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderController struct {
	Orders services.OrderService
	Logger *zap.Logger
}

// SubmitOrder replaces the session's current order with the posted items.
// The session comes from the X-Session-ID header; clients that omit it
// share a single cart.
func (oc *OrderController) SubmitOrder(c *gin.Context) {
	var items []models.OrderItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}

	order, err := oc.Orders.SubmitOrder(c.Request.Context(), c.GetHeader("X-Session-ID"), items)
	if err != nil {
		oc.Logger.Error("failed to save order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save order"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrders returns all current order documents.
func (oc *OrderController) GetOrders(c *gin.Context) {
	orders, err := oc.Orders.ListOrders(c.Request.Context())
	if err != nil {
		oc.Logger.Error("failed to load orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}
