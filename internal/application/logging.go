package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/recruitment-portal/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// logOutcome writes the single success or failure line each operation emits.
// Expected failures log at warn, everything else at error.
func logOutcome(ctx context.Context, logger *slog.Logger, err error, action string, attrs ...any) {
	if err != nil {
		level := slog.LevelWarn
		if ErrorKind(err) == "unexpected" {
			level = slog.LevelError
		}
		logger.Log(ctx, level, action+" failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	logger.InfoContext(ctx, action+" succeeded", attrs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountDisabled):
		return "account_disabled"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrSessionRevoked):
		return "session_revoked"
	case errors.Is(err, ErrPasswordChangeRequired):
		return "password_change_required"
	case errors.Is(err, ErrInvalidResetToken):
		return "invalid_reset_token"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
