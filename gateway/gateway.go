package gateway

import "context"

// CreatedPayment is the provider's answer to opening a payment intent. The
// payer must be redirected to ApprovalURL to authorize it.
type CreatedPayment struct {
	PaymentID   string
	ApprovalURL string
}

// PaymentResult carries the authoritative outcome of a captured payment.
// Everything the rest of the system records about the purchase (amount,
// payer identity, shipping address) comes from here, never from client
// request data.
type PaymentResult struct {
	PaymentID       string
	PayerFirstName  string
	PayerLastName   string
	PayerEmail      string
	ShippingAddress string
	Amount          string
	Currency        string
}

// CustomerName returns the payer's display name as recorded in history.
func (r *PaymentResult) CustomerName() string {
	return r.PayerFirstName + " " + r.PayerLastName
}

// PaymentGateway defines the interface all payment provider integrations
// must implement.
type PaymentGateway interface {
	// CreatePayment opens a payment intent for the given decimal amount and
	// returns the approval redirect target plus the provider's payment id.
	CreatePayment(ctx context.Context, total, currency string) (*CreatedPayment, error)

	// ExecutePayment captures a previously approved payment using the
	// identifiers the provider passed back on its redirect.
	ExecutePayment(ctx context.Context, paymentID, payerID string) (*PaymentResult, error)
}
