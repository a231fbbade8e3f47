package mail

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestResetLink(t *testing.T) {
	got := ResetLink("https://jobs.example.com/", "abc123")
	if got != "https://jobs.example.com/reset_password?token=abc123" {
		t.Fatalf("unexpected link %q", got)
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := LogSender{PublicURL: "http://localhost:8080", Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	if err := sender.SendPasswordReset(context.Background(), "a@b.com", "tok"); err != nil {
		t.Fatalf("SendPasswordReset failed: %v", err)
	}
	if !strings.Contains(buf.String(), "reset_password?token=tok") {
		t.Fatalf("expected link in log output, got %q", buf.String())
	}
}

func TestSMTPSender(t *testing.T) {
	t.Run("composes and relays the message", func(t *testing.T) {
		var (
			gotAddr string
			gotAuth smtp.Auth
			gotTo   []string
			gotMsg  string
		)
		sender := SMTPSender{
			Addr:      "smtp.example.com:587",
			Username:  "mailer",
			Password:  "secret",
			From:      "noreply@example.com",
			PublicURL: "https://jobs.example.com",
			Now:       func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
			Send: func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
				gotAddr, gotAuth, gotTo, gotMsg = addr, auth, to, string(msg)
				return nil
			},
		}

		if err := sender.SendPasswordReset(context.Background(), "cand@example.com", "tok"); err != nil {
			t.Fatalf("SendPasswordReset failed: %v", err)
		}
		if gotAddr != "smtp.example.com:587" || gotAuth == nil || len(gotTo) != 1 || gotTo[0] != "cand@example.com" {
			t.Fatalf("unexpected relay call %q %v %v", gotAddr, gotAuth, gotTo)
		}
		if !strings.Contains(gotMsg, "https://jobs.example.com/reset_password?token=tok") {
			t.Fatalf("expected reset link in body, got %q", gotMsg)
		}
	})

	t.Run("wraps relay failures", func(t *testing.T) {
		boom := errors.New("relay down")
		sender := SMTPSender{Addr: "localhost:25", From: "a@b.com", Send: func(string, smtp.Auth, string, []string, []byte) error { return boom }}

		if err := sender.SendPasswordReset(context.Background(), "x@y.com", "tok"); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped relay error, got %v", err)
		}
	})

	t.Run("rejects header injection", func(t *testing.T) {
		sender := SMTPSender{Send: func(string, smtp.Auth, string, []string, []byte) error { return nil }}
		if err := sender.SendPasswordReset(context.Background(), "x@y.com\r\nBcc: evil@z.com", "tok"); err == nil {
			t.Fatal("expected injected recipient to be rejected")
		}
	})
}
