package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

const (
	minCandidateAge = 16
	maxCandidateAge = 100
)

// DefaultMaxUploadBytes caps attachments, documents and profile pictures.
const DefaultMaxUploadBytes int64 = 5 << 20

// AccountDependencies groups the repositories AccountService reads from.
type AccountDependencies struct {
	Users          persistence.UserRepository
	Applications   persistence.ApplicationRepository
	Interviews     persistence.InterviewRepository
	Screening      persistence.ScreeningRepository
	Documents      persistence.DocumentRepository
	Now            func() time.Time
	MaxUploadBytes int64
}

// AccountService manages profiles and the administrator's candidate directory.
type AccountService struct {
	deps   AccountDependencies
	logger *slog.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(deps AccountDependencies) *AccountService {
	return NewAccountServiceWithLogger(deps, nil)
}

// NewAccountServiceWithLogger constructs an AccountService with a specified logger.
func NewAccountServiceWithLogger(deps AccountDependencies, logger *slog.Logger) *AccountService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &AccountService{deps: deps, logger: defaultLogger(logger)}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

func (s *AccountService) ready() error {
	if s == nil {
		return fmt.Errorf("AccountService is nil")
	}
	if s.deps.Users == nil {
		return fmt.Errorf("user repository not configured")
	}
	return nil
}

// GetProfile returns the principal's own account.
func (s *AccountService) GetProfile(ctx context.Context, principal Principal) (persistence.User, error) {
	if err := s.ready(); err != nil {
		return persistence.User{}, err
	}
	if principal.UserID == 0 {
		return persistence.User{}, ErrUnauthorized
	}
	user, err := s.deps.Users.GetUser(ctx, principal.UserID)
	return user, translateStoreError(err)
}

// UpdateProfile replaces the self-editable profile fields. A nil picture keeps the stored one.
func (s *AccountService) UpdateProfile(ctx context.Context, principal Principal, input ProfileInput) (user persistence.User, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateProfile", "principal_id", principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "profile update") }()

	if principal.UserID == 0 {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	requireText(vErr, "first_name", input.FirstName, "first name is required")
	requireText(vErr, "last_name", input.LastName, "last name is required")
	if input.Age != 0 && (input.Age < minCandidateAge || input.Age > maxCandidateAge) {
		vErr.add("age", fmt.Sprintf("age must be between %d and %d", minCandidateAge, maxCandidateAge))
	}
	if int64(len(input.ProfilePicture)) > s.deps.MaxUploadBytes {
		vErr.add("profile_picture", "profile picture exceeds the upload limit")
	}
	if err = vErr.orNil(); err != nil {
		return
	}

	if user, err = s.deps.Users.GetUser(ctx, principal.UserID); err != nil {
		err = translateStoreError(err)
		return
	}
	if user.ProfileLocked && !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.HomeAddress = strings.TrimSpace(input.HomeAddress)
	user.Age = input.Age
	user.Location = strings.TrimSpace(input.Location)
	user.Country = strings.TrimSpace(input.Country)
	if input.ProfilePicture != nil {
		user.ProfilePicture = input.ProfilePicture
	}
	user.UpdatedAt = s.deps.Now()

	err = translateStoreError(s.deps.Users.UpdateUser(ctx, user))
	return
}

// ListCandidates returns candidates whose first name, last name or email contains search.
// An empty search lists everyone.
func (s *AccountService) ListCandidates(ctx context.Context, principal Principal, search string) ([]persistence.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.deps.Users.ListUsers(ctx, persistence.UserFilter{
		Role:   persistence.RoleCandidate,
		Search: strings.TrimSpace(search),
	})
}

// GetCandidateDetails gathers everything the portal holds about one candidate.
func (s *AccountService) GetCandidateDetails(ctx context.Context, principal Principal, candidateID int64) (details CandidateDetails, err error) {
	if err = s.ready(); err != nil {
		return
	}
	if err = requireAdmin(principal); err != nil {
		return
	}

	if details.User, err = s.candidate(ctx, candidateID); err != nil {
		return
	}

	if s.deps.Applications != nil {
		app, appErr := s.deps.Applications.GetLatestApplication(ctx, candidateID)
		switch {
		case appErr == nil:
			details.Application = &app
		case !errors.Is(appErr, persistence.ErrNotFound):
			err = appErr
			return
		}
	}
	if s.deps.Interviews != nil {
		if details.Interviews, err = s.deps.Interviews.ListInterviews(ctx, candidateID); err != nil {
			return
		}
	}
	if s.deps.Screening != nil {
		if details.Assignments, err = s.deps.Screening.ListAssignments(ctx, persistence.AssignmentFilter{CandidateID: candidateID}); err != nil {
			return
		}
	}
	if s.deps.Documents != nil {
		details.Documents, err = s.deps.Documents.ListDocuments(ctx, candidateID)
	}
	return
}

// SetCandidateStatus enables or disables a candidate account.
func (s *AccountService) SetCandidateStatus(ctx context.Context, principal Principal, candidateID int64, status persistence.UserStatus) (user persistence.User, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SetCandidateStatus", "principal_id", principal.UserID, "candidate_id", candidateID, "status", status)
	defer func() { logOutcome(ctx, logger, err, "candidate status change") }()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if status != persistence.UserStatusActive && status != persistence.UserStatusDisabled {
		err = validationFailure("status", "status must be active or disabled")
		return
	}
	if user, err = s.candidate(ctx, candidateID); err != nil {
		return
	}
	user.Status = status
	user.UpdatedAt = s.deps.Now()
	err = translateStoreError(s.deps.Users.UpdateUser(ctx, user))
	return
}

// SetProfileLock freezes or unfreezes a candidate's self-service profile edits.
func (s *AccountService) SetProfileLock(ctx context.Context, principal Principal, candidateID int64, locked bool) (user persistence.User, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SetProfileLock", "principal_id", principal.UserID, "candidate_id", candidateID, "locked", locked)
	defer func() { logOutcome(ctx, logger, err, "profile lock change") }()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if user, err = s.candidate(ctx, candidateID); err != nil {
		return
	}
	user.ProfileLocked = locked
	user.UpdatedAt = s.deps.Now()
	err = translateStoreError(s.deps.Users.UpdateUser(ctx, user))
	return
}

func (s *AccountService) candidate(ctx context.Context, id int64) (persistence.User, error) {
	user, err := s.deps.Users.GetUser(ctx, id)
	if err != nil {
		return persistence.User{}, translateStoreError(err)
	}
	if user.Role != persistence.RoleCandidate {
		return persistence.User{}, ErrNotFound
	}
	return user, nil
}
