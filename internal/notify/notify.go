// Package notify delivers verification emails and payment SMS receipts.
package notify

import (
	"context"
	"errors"

	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

var ErrDeliveryFailed = errors.New("notification delivery failed")

type EmailSender interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

type SMSSender interface {
	SendReceipt(ctx context.Context, phone, message string) error
}

// LogEmailSender logs codes instead of sending them. Used when no SendGrid key is configured.
type LogEmailSender struct{}

func (LogEmailSender) SendVerificationCode(ctx context.Context, to, code string) error {
	logging.FromContext(ctx).WithField("to", to).Infof("verification code: %s", code)
	return nil
}

// LogSMSSender logs receipts instead of sending them.
type LogSMSSender struct{}

func (LogSMSSender) SendReceipt(ctx context.Context, phone, message string) error {
	logging.FromContext(ctx).WithField("phone", phone).Infof("sms receipt: %s", message)
	return nil
}
