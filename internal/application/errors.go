package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/example/recruitment-portal/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique value such as an email or title is taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	ErrAccountDisabled    = errors.New("application: account disabled")
	ErrSessionExpired     = errors.New("application: session expired")
	ErrSessionRevoked     = errors.New("application: session revoked")
	// ErrPasswordChangeRequired blocks seeded accounts until the default password is rotated.
	ErrPasswordChangeRequired = errors.New("application: password change required")
	// ErrInvalidResetToken covers unknown, consumed and expired reset tokens alike.
	ErrInvalidResetToken = errors.New("application: invalid reset token")
	// ErrInvalidTransition is returned when a status change is not allowed from the current state.
	ErrInvalidTransition = errors.New("application: invalid status transition")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error lists the offending fields in a stable order.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// orNil returns nil when nothing was recorded so callers can return it directly.
func (v *ValidationError) orNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

func validationFailure(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

// translateStoreError maps persistence sentinels onto application sentinels.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	}
	return err
}
