package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/Aaenoor/eco-market-backend/apperrors"
	"github.com/Aaenoor/eco-market-backend/models"
	"github.com/Aaenoor/eco-market-backend/sender"

	"go.uber.org/zap"
)

const (
	typePaymentSuccess = "payment_success"
	typePaymentFailure = "payment_failure"
)

// Notifier sends the checkout outcome emails. Failures are reported back to
// the caller, which logs and drops them: by the time a notification fires
// the money has already moved, so it must never roll anything back.
type Notifier interface {
	NotifySuccess(ctx context.Context, order *models.OrderHistory) error
	NotifyFailure(ctx context.Context) error
}

type emailConfig struct {
	tmplFile string
	subject  string
}

var emailConfigs = map[string]emailConfig{
	typePaymentSuccess: {
		tmplFile: "payment_success.html",
		subject:  "Payment received — order confirmed",
	},
	typePaymentFailure: {
		tmplFile: "payment_failure.html",
		subject:  "Payment failed or cancelled",
	},
}

type emailNotifier struct {
	emailSender sender.EmailSender
	recipient   string
	templates   map[string]*template.Template
	logger      *zap.Logger
}

// NewEmailNotifier parses the email templates under templateDir and returns
// a Notifier that mails the storefront operator address.
func NewEmailNotifier(emailSender sender.EmailSender, recipient, templateDir string, logger *zap.Logger) (Notifier, error) {
	tmpls := make(map[string]*template.Template)
	for emailType, cfg := range emailConfigs {
		tmpl, err := template.ParseFiles(filepath.Join(templateDir, cfg.tmplFile))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template for %s: %w", emailType, err)
		}
		tmpls[emailType] = tmpl
	}
	return &emailNotifier{
		emailSender: emailSender,
		recipient:   recipient,
		templates:   tmpls,
		logger:      logger,
	}, nil
}

func (n *emailNotifier) NotifySuccess(ctx context.Context, order *models.OrderHistory) error {
	return n.send(ctx, typePaymentSuccess, order)
}

func (n *emailNotifier) NotifyFailure(ctx context.Context) error {
	return n.send(ctx, typePaymentFailure, nil)
}

func (n *emailNotifier) send(ctx context.Context, emailType string, data interface{}) error {
	cfg := emailConfigs[emailType]

	var buf bytes.Buffer
	if err := n.templates[emailType].Execute(&buf, data); err != nil {
		return apperrors.Wrap(apperrors.ErrNotification, err)
	}

	result, err := n.emailSender.SendEmail(ctx, n.recipient, cfg.subject, buf.String())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrNotification, err)
	}

	n.logger.Info("notification sent",
		zap.String("type", emailType),
		zap.String("recipient", n.recipient),
		zap.String("message_id", result.MessageID),
	)
	return nil
}
