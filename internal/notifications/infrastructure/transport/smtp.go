// Package transport implements the delivery boundary: SMTP for email and the
// Web Push protocol for browser notifications, both wrapped in circuit
// breakers so a dead provider fails fast instead of stalling the pass.
package transport

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/chivvyhq/chivvy/internal/messages"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPEmail sends notification email through a plain SMTP relay.
type SMTPEmail struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPEmail creates the SMTP transport.
func NewSMTPEmail(cfg SMTPConfig) *SMTPEmail {
	return &SMTPEmail{cfg: cfg, send: smtp.SendMail}
}

// Send delivers one message. The context is honored only between retries
// because net/smtp has no context support; the breaker above this layer is
// what bounds a hung relay.
func (s *SMTPEmail) Send(ctx context.Context, to string, msg messages.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	body := buildMIME(s.cfg.From, to, msg)
	if err := s.send(addr, auth, s.cfg.From, []string{to}, body); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func buildMIME(from, to string, msg messages.Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(msg.Title))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// sanitizeHeader strips CR/LF so message copy can never inject headers.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
