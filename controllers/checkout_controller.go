package controllers

import (
	"errors"
	"net/http"

	"github.com/Aaenoor/eco-market-backend/apperrors"
	"github.com/Aaenoor/eco-market-backend/repository"
	"github.com/Aaenoor/eco-market-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutController struct {
	Checkout services.CheckoutService
	History  repository.OrderHistoryRepository
	Logger   *zap.Logger
}

// SetTotalBill upserts the running total for the checkout in progress.
func (cc *CheckoutController) SetTotalBill(c *gin.Context) {
	var req struct {
		Bill float64 `json:"bill" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bill must be a positive number"})
		return
	}

	bill, err := cc.Checkout.SetTotalBill(c.Request.Context(), req.Bill)
	if err != nil {
		cc.respondError(c, "failed to save total bill", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalBill": bill.TotalBill})
}

// Pay starts the payment flow: the caller is redirected to the gateway's
// approval page. Control does not return until the payer acts there.
func (cc *CheckoutController) Pay(c *gin.Context) {
	approvalURL, err := cc.Checkout.InitiatePayment(c.Request.Context())
	if err != nil {
		cc.respondError(c, "failed to initiate payment", err)
		return
	}

	c.Redirect(http.StatusFound, approvalURL)
}

// Success is the gateway's return redirect. Any failure on this path —
// execution rejected, history write failed — resolves to the friendly
// cancel view; the cause is only logged server-side.
func (cc *CheckoutController) Success(c *gin.Context) {
	payerID := c.Query("PayerID")
	paymentID := c.Query("paymentId")
	if payerID == "" || paymentID == "" {
		cc.Logger.Warn("success callback missing identifiers",
			zap.String("payment_id", paymentID),
		)
		c.HTML(http.StatusOK, "cancel.html", nil)
		return
	}

	entry, err := cc.Checkout.CompletePayment(c.Request.Context(), paymentID, payerID)
	if err != nil {
		cc.Logger.Error("payment execution failed",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		c.HTML(http.StatusOK, "cancel.html", nil)
		return
	}

	c.HTML(http.StatusOK, "success.html", gin.H{
		"CustomerName": entry.CustomerName,
		"Amount":       entry.Amount,
	})
}

// Cancel is the gateway's cancel redirect (payer declined at the provider).
func (cc *CheckoutController) Cancel(c *gin.Context) {
	cc.Checkout.CancelPayment(c.Request.Context(), c.Query("paymentId"))
	c.HTML(http.StatusOK, "cancel.html", nil)
}

// OrdersHistory is the reporting read over completed purchases.
func (cc *CheckoutController) OrdersHistory(c *gin.Context) {
	entries, err := cc.History.ListAll(c.Request.Context())
	if err != nil {
		cc.respondError(c, "failed to load order history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orderHistory": entries})
}

func (cc *CheckoutController) respondError(c *gin.Context, msg string, err error) {
	cc.Logger.Warn(msg, zap.Error(err))

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
