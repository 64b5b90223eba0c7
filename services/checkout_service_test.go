package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aaenoor/eco-market-backend/apperrors"
	"github.com/Aaenoor/eco-market-backend/gateway"
	"github.com/Aaenoor/eco-market-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ---- fakes ----

type fakeBillRepo struct {
	bill    *models.Bill
	upserts int
}

func (f *fakeBillRepo) Upsert(_ context.Context, amount float64) (*models.Bill, error) {
	f.upserts++
	f.bill = &models.Bill{ID: models.CurrentBillID, TotalBill: amount, UpdatedAt: time.Now()}
	return f.bill, nil
}

func (f *fakeBillRepo) Current(_ context.Context) (*models.Bill, error) {
	if f.bill == nil {
		return nil, mongo.ErrNoDocuments
	}
	return f.bill, nil
}

type fakeGateway struct {
	created      *gateway.CreatedPayment
	createErr    error
	result       *gateway.PaymentResult
	executeErr   error
	createCalls  int
	executeCalls int
	lastTotal    string
}

func (f *fakeGateway) CreatePayment(_ context.Context, total, _ string) (*gateway.CreatedPayment, error) {
	f.createCalls++
	f.lastTotal = total
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeGateway) ExecutePayment(_ context.Context, _, _ string) (*gateway.PaymentResult, error) {
	f.executeCalls++
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	return f.result, nil
}

type fakePaymentRepo struct {
	rows map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{rows: make(map[string]*models.Payment)}
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	f.rows[payment.ProviderPaymentID] = payment
	return nil
}

func (f *fakePaymentRepo) FindByProviderPaymentID(_ context.Context, id string) (*models.Payment, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

func (f *fakePaymentRepo) MarkExecuted(_ context.Context, id, payerEmail string) error {
	if p, ok := f.rows[id]; ok && !p.Final() {
		p.Status = models.PaymentStatusExecuted
		p.PayerEmail = &payerEmail
	}
	return nil
}

func (f *fakePaymentRepo) MarkFailed(_ context.Context, id, reason string) error {
	if p, ok := f.rows[id]; ok && !p.Final() {
		p.Status = models.PaymentStatusFailed
		p.FailureReason = &reason
	}
	return nil
}

func (f *fakePaymentRepo) MarkCanceled(_ context.Context, id string) error {
	if p, ok := f.rows[id]; ok && !p.Final() {
		p.Status = models.PaymentStatusCanceled
	}
	return nil
}

type fakeHistoryRepo struct {
	entries   []models.OrderHistory
	recordErr error
}

func (f *fakeHistoryRepo) Record(_ context.Context, entry *models.OrderHistory) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListAll(_ context.Context) ([]models.OrderHistory, error) {
	return f.entries, nil
}

type fakeIdemStore struct {
	claimed  map[string]bool
	beginErr error
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{claimed: make(map[string]bool)}
}

func (f *fakeIdemStore) Begin(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.beginErr != nil {
		return false, f.beginErr
	}
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

func (f *fakeIdemStore) Clear(_ context.Context, key string) error {
	delete(f.claimed, key)
	return nil
}

type fakeNotifier struct {
	successCalls int
	failureCalls int
	err          error
}

func (f *fakeNotifier) NotifySuccess(_ context.Context, _ *models.OrderHistory) error {
	f.successCalls++
	return f.err
}

func (f *fakeNotifier) NotifyFailure(_ context.Context) error {
	f.failureCalls++
	return f.err
}

type checkoutFixture struct {
	bills    *fakeBillRepo
	payments *fakePaymentRepo
	history  *fakeHistoryRepo
	idem     *fakeIdemStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	svc      CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	fx := &checkoutFixture{
		bills:    &fakeBillRepo{},
		payments: newFakePaymentRepo(),
		history:  &fakeHistoryRepo{},
		idem:     newFakeIdemStore(),
		gateway: &fakeGateway{
			created: &gateway.CreatedPayment{
				PaymentID:   "PAY-123",
				ApprovalURL: "https://provider/approve?token=X",
			},
			result: &gateway.PaymentResult{
				PaymentID:       "PAY-123",
				PayerFirstName:  "A",
				PayerLastName:   "B",
				PayerEmail:      "a@b.com",
				ShippingAddress: "1 Main St, Springfield, IL, US",
				Amount:          "49.99",
				Currency:        "USD",
			},
		},
		notifier: &fakeNotifier{},
	}
	fx.svc = NewCheckoutService(
		fx.bills, fx.payments, fx.history, fx.idem, fx.gateway, fx.notifier, zap.NewNop(),
	)
	return fx
}

// ---- tests ----

func TestSetTotalBillLastWriteWins(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()

	amounts := []float64{10, 25.5, 49.99}
	for _, amount := range amounts {
		_, err := fx.svc.SetTotalBill(ctx, amount)
		require.NoError(t, err)
	}

	bill, err := fx.bills.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 49.99, bill.TotalBill)
	assert.Equal(t, len(amounts), fx.bills.upserts)
}

func TestInitiatePaymentWithoutBill(t *testing.T) {
	fx := newCheckoutFixture()

	_, err := fx.svc.InitiatePayment(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNoBill)
	assert.Zero(t, fx.gateway.createCalls, "gateway must not be called without a bill")
}

func TestInitiatePaymentReturnsApprovalURL(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()

	_, err := fx.svc.SetTotalBill(ctx, 49.99)
	require.NoError(t, err)

	approvalURL, err := fx.svc.InitiatePayment(ctx)
	require.NoError(t, err)

	assert.Equal(t, "https://provider/approve?token=X", approvalURL)
	assert.Equal(t, "49.99", fx.gateway.lastTotal)

	row, err := fx.payments.FindByProviderPaymentID(ctx, "PAY-123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCreated, row.Status)
	assert.Equal(t, "49.99", row.Amount)
}

func TestInitiatePaymentGatewayFailure(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()
	fx.gateway.createErr = errors.New("provider down")

	_, err := fx.svc.SetTotalBill(ctx, 20)
	require.NoError(t, err)

	_, err = fx.svc.InitiatePayment(ctx)

	assert.ErrorIs(t, err, apperrors.ErrGateway)
	assert.Empty(t, fx.payments.rows, "no payment row on gateway failure")
	// The bill is untouched: the next initiation can retry.
	bill, err := fx.bills.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20.0, bill.TotalBill)
}

func TestCompletePaymentRecordsHistory(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()

	entry, err := fx.svc.CompletePayment(ctx, "PAY-123", "PAYER-1")
	require.NoError(t, err)

	require.Len(t, fx.history.entries, 1)
	assert.Equal(t, "A B", entry.CustomerName)
	assert.Equal(t, "a@b.com", entry.Email)
	assert.Equal(t, "49.99", entry.Amount, "amount must come from the gateway response")
	assert.Equal(t, "1 Main St, Springfield, IL, US", entry.ShippingAddress)
	assert.Equal(t, 1, fx.notifier.successCalls)
}

func TestCompletePaymentMarksAuditRowExecuted(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()

	_, err := fx.svc.SetTotalBill(ctx, 49.99)
	require.NoError(t, err)
	_, err = fx.svc.InitiatePayment(ctx)
	require.NoError(t, err)

	_, err = fx.svc.CompletePayment(ctx, "PAY-123", "PAYER-1")
	require.NoError(t, err)

	row, err := fx.payments.FindByProviderPaymentID(ctx, "PAY-123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusExecuted, row.Status)
	require.NotNil(t, row.PayerEmail)
	assert.Equal(t, "a@b.com", *row.PayerEmail)
}

func TestCompletePaymentNotificationFailureDoesNotFail(t *testing.T) {
	fx := newCheckoutFixture()
	fx.notifier.err = apperrors.Wrap(apperrors.ErrNotification, errors.New("smtp down"))

	entry, err := fx.svc.CompletePayment(context.Background(), "PAY-123", "PAYER-1")

	require.NoError(t, err, "notification failure must not fail the checkout")
	require.NotNil(t, entry)
	assert.Len(t, fx.history.entries, 1, "history entry must still be committed")
}

func TestCompletePaymentExecuteFailure(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()
	fx.gateway.executeErr = errors.New("payment expired")

	_, err := fx.svc.SetTotalBill(ctx, 49.99)
	require.NoError(t, err)
	_, err = fx.svc.InitiatePayment(ctx)
	require.NoError(t, err)

	_, err = fx.svc.CompletePayment(ctx, "PAY-123", "PAYER-1")

	assert.ErrorIs(t, err, apperrors.ErrGateway)
	assert.Empty(t, fx.history.entries, "no history entry on execution failure")

	row, findErr := fx.payments.FindByProviderPaymentID(ctx, "PAY-123")
	require.NoError(t, findErr)
	assert.Equal(t, models.PaymentStatusFailed, row.Status)

	// The claim is released so a retry can reach the gateway again.
	assert.False(t, fx.idem.claimed["PAY-123"])
}

func TestCompletePaymentDuplicateCallback(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()

	_, err := fx.svc.CompletePayment(ctx, "PAY-123", "PAYER-1")
	require.NoError(t, err)

	_, err = fx.svc.CompletePayment(ctx, "PAY-123", "PAYER-1")

	assert.Error(t, err)
	assert.Equal(t, 1, fx.gateway.executeCalls, "the gateway must only be hit once per payment")
	assert.Len(t, fx.history.entries, 1)
}

func TestCompletePaymentHistoryWriteFailure(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()
	fx.history.recordErr = errors.New("mongo write failed")

	_, err := fx.svc.SetTotalBill(ctx, 49.99)
	require.NoError(t, err)
	_, err = fx.svc.InitiatePayment(ctx)
	require.NoError(t, err)

	_, err = fx.svc.CompletePayment(ctx, "PAY-123", "PAYER-1")

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Empty(t, fx.history.entries)

	row, findErr := fx.payments.FindByProviderPaymentID(ctx, "PAY-123")
	require.NoError(t, findErr)
	assert.Equal(t, models.PaymentStatusFailed, row.Status)
}

func TestCompletePaymentProceedsWhenIdemStoreDown(t *testing.T) {
	fx := newCheckoutFixture()
	fx.idem.beginErr = errors.New("redis unreachable")

	entry, err := fx.svc.CompletePayment(context.Background(), "PAY-123", "PAYER-1")

	require.NoError(t, err, "an unavailable idempotency store must not block a paying customer")
	require.NotNil(t, entry)
	assert.Equal(t, 1, fx.gateway.executeCalls)
}

func TestCancelPaymentSendsFailureNotification(t *testing.T) {
	fx := newCheckoutFixture()
	ctx := context.Background()

	_, err := fx.svc.SetTotalBill(ctx, 49.99)
	require.NoError(t, err)
	_, err = fx.svc.InitiatePayment(ctx)
	require.NoError(t, err)

	fx.svc.CancelPayment(ctx, "PAY-123")

	assert.Equal(t, 1, fx.notifier.failureCalls)
	row, err := fx.payments.FindByProviderPaymentID(ctx, "PAY-123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCanceled, row.Status)
}

func TestCancelPaymentWithoutPaymentID(t *testing.T) {
	fx := newCheckoutFixture()

	fx.svc.CancelPayment(context.Background(), "")

	assert.Equal(t, 1, fx.notifier.failureCalls)
}
