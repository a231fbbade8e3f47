package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/recruitment-portal/internal/persistence"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"password": "x", "email": "y"}}
	if got := withFields.Error(); got != "validation failed: email, password" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
}

func TestValidationError_AddKeepsFirstMessage(t *testing.T) {
	t.Parallel()

	v := &ValidationError{}
	v.add("email", "email is required")
	v.add("email", "email is invalid")
	if got := v.FieldErrors["email"]; got != "email is required" {
		t.Fatalf("expected first message to win, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"phone": "phone is invalid"}}
	v.merge(other)
	if !v.HasErrors() || v.FieldErrors["phone"] != "phone is invalid" {
		t.Fatalf("expected merge to copy fields, got %#v", v.FieldErrors)
	}

	if (&ValidationError{}).orNil() != nil {
		t.Fatal("expected orNil to return nil for an empty error")
	}
}

func TestTranslateStoreError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   error
		want error
	}{
		{fmt.Errorf("wrapped: %w", persistence.ErrNotFound), ErrNotFound},
		{fmt.Errorf("%w: users.email", persistence.ErrDuplicate), ErrAlreadyExists},
		{persistence.ErrConstraintViolation, persistence.ErrConstraintViolation},
	}
	for _, tc := range cases {
		if got := translateStoreError(tc.in); !errors.Is(got, tc.want) {
			t.Errorf("translateStoreError(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if translateStoreError(nil) != nil {
		t.Error("expected nil passthrough")
	}
}
