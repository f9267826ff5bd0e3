// Package mail delivers console notification emails over SMTP. Delivery
// failures are surfaced to callers so they can record the "issued but
// unnotified" state rather than fail the operation outright.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends a single multipart email.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody, textBody string) error
}

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailer is the production Mailer backed by net/smtp.
type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, htmlBody, textBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	message := fmt.Sprintf(`From: %s
To: %s
Subject: %s
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="boundary-console"

--boundary-console
Content-Type: text/plain; charset=UTF-8

%s

--boundary-console
Content-Type: text/html; charset=UTF-8

%s

--boundary-console--`,
		m.cfg.From,
		strings.Join(to, ", "),
		subject,
		textBody,
		htmlBody)

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, to, []byte(message)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", strings.Join(to, ","), err)
	}
	return nil
}

// Noop discards every message. Used when SMTP is not configured.
type Noop struct{}

func (Noop) Send(ctx context.Context, to []string, subject, htmlBody, textBody string) error {
	return nil
}
