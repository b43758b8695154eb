package notifications

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

var ErrNoEmail = errors.New("recipient has no email address")

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers over SMTP.
type EmailSender struct {
	dialer mailDialer
	from   string
}

func NewEmailSender(host string, port int, user, pass string) (*EmailSender, error) {
	if host == "" || user == "" {
		return nil, fmt.Errorf("SMTP_HOST and SMTP_USER must be set")
	}
	return &EmailSender{dialer: gomail.NewDialer(host, port, user, pass), from: user}, nil
}

func (e *EmailSender) Name() string { return "email" }

func (e *EmailSender) Send(_ context.Context, msg Message) error {
	if msg.To.Email == "" {
		return ErrNoEmail
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", msg.To.Email)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
