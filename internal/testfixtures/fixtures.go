package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

var userCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user before it is stored.
type UserOption func(*persistence.User)

// WithEmail overrides the generated email address.
func WithEmail(email string) UserOption {
	return func(u *persistence.User) {
		u.Email = email
	}
}

// WithName overrides the generated first and last names.
func WithName(first, last string) UserOption {
	return func(u *persistence.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// WithPasswordHash stores hash instead of the placeholder value.
func WithPasswordHash(hash string) UserOption {
	return func(u *persistence.User) {
		u.PasswordHash = hash
	}
}

// WithStatus overrides the account status.
func WithStatus(status persistence.UserStatus) UserOption {
	return func(u *persistence.User) {
		u.Status = status
	}
}

// NewUser returns a deterministic, unsaved user with the given role.
func NewUser(role persistence.Role, opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	registered := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		Email:        fmt.Sprintf("%s-%03d@example.com", role, idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%03d", idx),
		Role:         role,
		Status:       persistence.UserStatusActive,
		RegisteredAt: registered,
		UpdatedAt:    registered,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// CreateUser stores a generated user and fails the test on error.
func CreateUser(tb testing.TB, repo persistence.UserRepository, role persistence.Role, opts ...UserOption) persistence.User {
	tb.Helper()

	user, err := repo.CreateUser(context.Background(), NewUser(role, opts...))
	if err != nil {
		tb.Fatalf("failed to create %s fixture: %v", role, err)
	}
	return user
}

// CreateCandidate stores a generated candidate.
func CreateCandidate(tb testing.TB, repo persistence.UserRepository, opts ...UserOption) persistence.User {
	tb.Helper()
	return CreateUser(tb, repo, persistence.RoleCandidate, opts...)
}

// CreateAdmin stores a generated administrator.
func CreateAdmin(tb testing.TB, repo persistence.UserRepository, opts ...UserOption) persistence.User {
	tb.Helper()
	return CreateUser(tb, repo, persistence.RoleAdmin, opts...)
}
