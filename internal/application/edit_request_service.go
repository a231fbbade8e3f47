package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

// EditRequestService routes candidate change requests to administrators.
type EditRequestService struct {
	requests persistence.EditRequestRepository
	activity activityRecorder
	now      func() time.Time
	logger   *slog.Logger
}

// NewEditRequestService constructs an EditRequestService.
func NewEditRequestService(requests persistence.EditRequestRepository, activities persistence.ActivityRepository, now func() time.Time) *EditRequestService {
	return NewEditRequestServiceWithLogger(requests, activities, now, nil)
}

// NewEditRequestServiceWithLogger constructs an EditRequestService with a specified logger.
func NewEditRequestServiceWithLogger(requests persistence.EditRequestRepository, activities persistence.ActivityRepository, now func() time.Time, logger *slog.Logger) *EditRequestService {
	if now == nil {
		now = time.Now
	}
	return &EditRequestService{
		requests: requests,
		activity: activityRecorder{repo: activities, now: now},
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *EditRequestService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EditRequestService", operation, attrs...)
}

func (s *EditRequestService) ready() error {
	if s == nil {
		return fmt.Errorf("EditRequestService is nil")
	}
	if s.requests == nil {
		return fmt.Errorf("edit request repository not configured")
	}
	return nil
}

// Submit files a pending request.
func (s *EditRequestService) Submit(ctx context.Context, params SubmitEditRequestParams) (req persistence.EditRequest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Submit", "principal_id", params.Principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "edit request submission", "request_id", req.ID) }()

	if err = requireCandidate(params.Principal); err != nil {
		return
	}

	vErr := &ValidationError{}
	requireText(vErr, "reason", params.Reason, "reason is required")
	requireText(vErr, "requested_changes", params.RequestedChanges, "requested changes are required")
	if err = vErr.orNil(); err != nil {
		return
	}

	req, err = s.requests.CreateEditRequest(ctx, persistence.EditRequest{
		UserID:           params.Principal.UserID,
		Reason:           strings.TrimSpace(params.Reason),
		RequestedChanges: strings.TrimSpace(params.RequestedChanges),
		Status:           persistence.EditRequestPending,
		CreatedAt:        s.now(),
	})
	err = translateStoreError(err)
	return
}

// ListOwn returns the candidate's requests, newest first.
func (s *EditRequestService) ListOwn(ctx context.Context, principal Principal) ([]persistence.EditRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireCandidate(principal); err != nil {
		return nil, err
	}
	return s.requests.ListEditRequests(ctx, persistence.EditRequestFilter{UserID: principal.UserID})
}

// List returns every request, optionally narrowed to one status.
func (s *EditRequestService) List(ctx context.Context, principal Principal, status persistence.EditRequestStatus) ([]persistence.EditRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.requests.ListEditRequests(ctx, persistence.EditRequestFilter{Status: status})
}

// Resolve approves or rejects a pending request.
func (s *EditRequestService) Resolve(ctx context.Context, params ResolveEditRequestParams) (req persistence.EditRequest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Resolve", "principal_id", params.Principal.UserID, "request_id", params.RequestID, "status", params.Status)
	defer func() { logOutcome(ctx, logger, err, "edit request resolution") }()

	if err = requireAdmin(params.Principal); err != nil {
		return
	}
	if params.Status != persistence.EditRequestApproved && params.Status != persistence.EditRequestRejected {
		err = validationFailure("status", "status must be approved or rejected")
		return
	}

	if req, err = s.requests.GetEditRequest(ctx, params.RequestID); err != nil {
		err = translateStoreError(err)
		return
	}
	if req.Status != persistence.EditRequestPending {
		err = ErrInvalidTransition
		return
	}

	now := s.now()
	req.Status = params.Status
	req.Response = strings.TrimSpace(params.Response)
	req.RespondedAt = &now
	if err = s.requests.UpdateEditRequest(ctx, req); err != nil {
		err = translateStoreError(err)
		return
	}

	s.activity.record(ctx, logger, ActivityEditRequestResolved, fmt.Sprintf("edit request %d %s", req.ID, req.Status), req.UserID)
	return
}
