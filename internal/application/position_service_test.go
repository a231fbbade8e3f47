package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

func TestPositionService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	svc := NewPositionService(f.storage, f.clock.NowFunc())

	pos, err := svc.Create(ctx, CreatePositionParams{Principal: f.admin, Title: "Nurse", RequiredStaff: 3})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, CreatePositionParams{Principal: f.admin, Title: "Nurse", RequiredStaff: 1}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected duplicate title to fail, got %v", err)
	}
	if _, err := svc.Create(ctx, CreatePositionParams{Principal: f.admin, Title: "Empty", RequiredStaff: 0}); err == nil {
		t.Fatal("expected zero required staff to be rejected")
	}

	if _, err := svc.UpdateFilled(ctx, f.admin, pos.ID, 1); err != nil {
		t.Fatalf("UpdateFilled failed: %v", err)
	}
	updated, err := svc.UpdateFilled(ctx, f.admin, pos.ID, 2)
	if err != nil || updated.FilledStaff != 2 {
		t.Fatalf("last write should win, got %#v, %v", updated, err)
	}
	if _, err := svc.UpdateFilled(ctx, f.admin, pos.ID, -1); err == nil {
		t.Fatal("expected negative filled count to be rejected")
	}
	if _, err := svc.List(ctx, f.candidate); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected candidates to be denied, got %v", err)
	}
}

func TestEditRequestService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	svc := NewEditRequestService(f.storage, f.storage, f.clock.NowFunc())

	req, err := svc.Submit(ctx, SubmitEditRequestParams{Principal: f.candidate, Reason: "typo", RequestedChanges: "mobile +1 555 0199"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	pending, err := svc.List(ctx, f.admin, persistence.EditRequestPending)
	if err != nil || len(pending) != 1 {
		t.Fatalf("List = %#v, %v", pending, err)
	}

	resolved, err := svc.Resolve(ctx, ResolveEditRequestParams{Principal: f.admin, RequestID: req.ID, Status: persistence.EditRequestApproved, Response: "done"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.RespondedAt == nil || resolved.Status != persistence.EditRequestApproved {
		t.Fatalf("unexpected resolution %#v", resolved)
	}
	_, err = svc.Resolve(ctx, ResolveEditRequestParams{Principal: f.admin, RequestID: req.ID, Status: persistence.EditRequestRejected})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected second resolution to fail, got %v", err)
	}

	own, err := svc.ListOwn(ctx, f.candidate)
	if err != nil || len(own) != 1 || own[0].Response != "done" {
		t.Fatalf("ListOwn = %#v, %v", own, err)
	}
}

func TestDashboardService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	auth := NewAuthService(AuthDependencies{Users: f.storage, Sessions: f.storage, Activities: f.storage, Hasher: testHasher(), Now: f.clock.NowFunc()}, AuthSettings{})
	dashboard := NewDashboardService(f.storage, f.storage, f.clock.NowFunc())
	settings := NewSettingsService(f.storage)

	if _, err := auth.Register(ctx, RegisterParams{Email: "new@example.com", Password: "secret1", ConfirmPassword: "secret1", FirstName: "New", LastName: "Person"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	f.clock.Advance(24 * time.Hour)
	if _, err := auth.Authenticate(ctx, AuthenticateParams{Email: "new@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	overview, err := dashboard.Overview(ctx, f.admin)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if overview.Statistics.TotalCandidates != 3 {
		t.Fatalf("expected 3 candidates, got %d", overview.Statistics.TotalCandidates)
	}
	if len(overview.RecentActivities) != 2 || overview.RecentActivities[0].Type != ActivityLogin {
		t.Fatalf("unexpected recent activities %#v", overview.RecentActivities)
	}
	if len(overview.Statistics.LoginsPerDay) == 0 {
		t.Fatal("expected logins to be counted")
	}

	if _, err := dashboard.Overview(ctx, f.candidate); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected candidates to be denied, got %v", err)
	}

	if err := settings.Put(ctx, f.admin, "filled_positions", "4"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value, err := settings.Get(ctx, f.admin, "filled_positions")
	if err != nil || value != "4" {
		t.Fatalf("Get = %q, %v", value, err)
	}
	if _, err := settings.Get(ctx, f.admin, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
