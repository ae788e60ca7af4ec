package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGrid envia os e-mails transacionais da plataforma.
type SendGrid struct {
	client *sendgrid.Client
	from   string
}

func New(apiKey, from string) *SendGrid {
	return &SendGrid{client: sendgrid.NewSendClient(apiKey), from: from}
}

// SendPasswordResetCode envia o código de reset de senha.
func (m *SendGrid) SendPasswordResetCode(ctx context.Context, email, code string) error {
	from := mail.NewEmail("Reedz", m.from)
	to := mail.NewEmail("", email)
	subject := "Your Reedz Password Reset Code"
	body := fmt.Sprintf("Your Reedz password reset code is: %s\n\nThis code will expire in 15 minutes.", code)

	msg := mail.NewSingleEmailPlainText(from, subject, to, body)
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: http %d", resp.StatusCode)
	}
	return nil
}
