package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/recruitment-portal/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctxLogger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)

	serviceLogger(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), "AuthService", "Authenticate").Info("hello")
	out := buf.String()
	if !strings.Contains(out, "service=AuthService") || !strings.Contains(out, "operation=Authenticate") {
		t.Fatalf("expected service attributes in %q", out)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[error]string{
		nil:                                 "",
		ErrUnauthorized:                     "unauthorized",
		fmt.Errorf("x: %w", ErrNotFound):    "not_found",
		ErrAlreadyExists:                    "already_exists",
		ErrInvalidCredentials:               "invalid_credentials",
		ErrSessionExpired:                   "session_expired",
		ErrPasswordChangeRequired:           "password_change_required",
		ErrInvalidResetToken:                "invalid_reset_token",
		ErrInvalidTransition:                "invalid_transition",
		validationFailure("email", "bad"):   "validation",
		fmt.Errorf("disk on fire"):          "unexpected",
	}
	for err, want := range cases {
		if got := ErrorKind(err); got != want {
			t.Errorf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestLogOutcomeLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logOutcome(context.Background(), logger, ErrNotFound, "load thing")
	logOutcome(context.Background(), logger, fmt.Errorf("boom"), "load thing")
	logOutcome(context.Background(), logger, nil, "load thing", "id", 7)

	out := buf.String()
	for _, want := range []string{"level=WARN msg=\"load thing failed\"", "level=ERROR msg=\"load thing failed\"", "level=INFO msg=\"load thing succeeded\" id=7"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
