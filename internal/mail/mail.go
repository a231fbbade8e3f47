// Package mail delivers password-reset links.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"net/url"
	"strings"
	"time"
)

// ResetLink builds the link a user follows to redeem token.
func ResetLink(publicURL, token string) string {
	return strings.TrimRight(publicURL, "/") + "/reset_password?token=" + url.QueryEscape(token)
}

// LogSender writes reset links to the log instead of sending mail.
type LogSender struct {
	PublicURL string
	Logger    *slog.Logger
}

// SendPasswordReset logs the link at info level.
func (s LogSender) SendPasswordReset(ctx context.Context, recipient, token string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "password reset link issued", "recipient", recipient, "link", ResetLink(s.PublicURL, token))
	return nil
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers reset links through an SMTP relay.
type SMTPSender struct {
	Addr      string
	Username  string
	Password  string
	From      string
	PublicURL string
	Now       func() time.Time
	Send      SendFunc
}

// SendPasswordReset composes a plain-text message and hands it to the relay.
func (s SMTPSender) SendPasswordReset(ctx context.Context, recipient, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(recipient, "\r\n") {
		return fmt.Errorf("mail: invalid recipient %q", recipient)
	}

	send := s.Send
	if send == nil {
		send = smtp.SendMail
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var auth smtp.Auth
	if s.Username != "" {
		host := s.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}

	if err := send(s.Addr, auth, s.From, []string{recipient}, s.compose(recipient, token, now())); err != nil {
		return fmt.Errorf("mail: send reset to %s: %w", recipient, err)
	}
	return nil
}

func (s SMTPSender) compose(recipient, token string, at time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("Subject: Reset your recruitment portal password\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString("A password reset was requested for your account.\r\n\r\n")
	fmt.Fprintf(&b, "Follow this link to choose a new password:\r\n%s\r\n\r\n", ResetLink(s.PublicURL, token))
	b.WriteString("If you did not request a reset you can ignore this message.\r\n")
	return []byte(b.String())
}
