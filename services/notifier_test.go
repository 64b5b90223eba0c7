package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aaenoor/eco-market-backend/apperrors"
	"github.com/Aaenoor/eco-market-backend/models"
	"github.com/Aaenoor/eco-market-backend/sender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmailSender struct {
	to      string
	subject string
	body    string
	calls   int
	err     error
}

func (f *fakeEmailSender) SendEmail(_ context.Context, to, subject, body string) (sender.SendResult, error) {
	f.calls++
	f.to = to
	f.subject = subject
	f.body = body
	if f.err != nil {
		return sender.SendResult{}, f.err
	}
	return sender.SendResult{MessageID: "test-1", SentAt: time.Now()}, nil
}

func TestNotifySuccessRendersOrderDetails(t *testing.T) {
	emailSender := &fakeEmailSender{}
	notifier, err := NewEmailNotifier(emailSender, "shop@example.com", "../templates/emails", zap.NewNop())
	require.NoError(t, err)

	err = notifier.NotifySuccess(context.Background(), &models.OrderHistory{
		CustomerName:    "A B",
		Email:           "a@b.com",
		Amount:          "49.99",
		ShippingAddress: "1 Main St, Springfield, IL, US",
	})
	require.NoError(t, err)

	assert.Equal(t, "shop@example.com", emailSender.to)
	assert.Contains(t, emailSender.body, "A B")
	assert.Contains(t, emailSender.body, "49.99")
}

func TestNotifyFailure(t *testing.T) {
	emailSender := &fakeEmailSender{}
	notifier, err := NewEmailNotifier(emailSender, "shop@example.com", "../templates/emails", zap.NewNop())
	require.NoError(t, err)

	err = notifier.NotifyFailure(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, emailSender.calls)
	assert.Contains(t, emailSender.body, "did not complete")
}

func TestNotifySendFailureWrapsNotificationError(t *testing.T) {
	emailSender := &fakeEmailSender{err: errors.New("smtp down")}
	notifier, err := NewEmailNotifier(emailSender, "shop@example.com", "../templates/emails", zap.NewNop())
	require.NoError(t, err)

	err = notifier.NotifyFailure(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNotification)
}
