package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

type mailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	Sandbox   bool
	CodeTTL   time.Duration
}

type SendGridSender struct {
	client mailClient
	cfg    SendGridConfig
}

func NewSendGridSender(cfg SendGridConfig) *SendGridSender {
	return &SendGridSender{client: sendgrid.NewSendClient(cfg.APIKey), cfg: cfg}
}

func (s *SendGridSender) SendVerificationCode(ctx context.Context, to, code string) error {
	msg := s.buildVerificationEmail(to, code)

	resp, err := s.client.Send(msg)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Errorf("failed to send verification email to %s via SendGrid", to)
		return fmt.Errorf("%w: sendgrid: %v", ErrDeliveryFailed, err)
	}
	if resp != nil && resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid status %d: %s", ErrDeliveryFailed, resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *SendGridSender) buildVerificationEmail(to, code string) *mail.SGMailV3 {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	subject := s.cfg.FromName + " - Email Verification Code"
	minutes := int(s.cfg.CodeTTL.Minutes())
	plain := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes)
	html := fmt.Sprintf(verificationEmailHTML, s.cfg.FromName, code, minutes, time.Now().Year(), s.cfg.FromName)

	msg := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), plain, html)
	if s.cfg.Sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	return msg
}

const verificationEmailHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
<h2>Welcome to %s</h2>
<p>Use the code below to verify your email address.</p>
<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</p>
<p>This code expires in %d minutes.</p>
<p style="color: #6b7280; font-size: 12px;">&copy; %d %s</p>
</body>
</html>`
