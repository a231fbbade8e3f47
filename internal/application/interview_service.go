package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

const (
	interviewDateLayout = "2006-01-02"
	interviewTimeLayout = "15:04"
)

// Interview formats, stages and candidate replies.
var (
	InterviewTypes     = []string{"In-person", "Phone", "Video"}
	InterviewStages    = []string{"First", "Second", "Final"}
	InterviewResponses = []string{"Yes", "No", "Reschedule Request"}
)

// InterviewService schedules interviews and records candidate replies.
// Overlapping slots are not detected.
type InterviewService struct {
	interviews persistence.InterviewRepository
	users      persistence.UserRepository
	activity   activityRecorder
	now        func() time.Time
	logger     *slog.Logger
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(interviews persistence.InterviewRepository, users persistence.UserRepository, activities persistence.ActivityRepository, now func() time.Time) *InterviewService {
	return NewInterviewServiceWithLogger(interviews, users, activities, now, nil)
}

// NewInterviewServiceWithLogger constructs an InterviewService with a specified logger.
func NewInterviewServiceWithLogger(interviews persistence.InterviewRepository, users persistence.UserRepository, activities persistence.ActivityRepository, now func() time.Time, logger *slog.Logger) *InterviewService {
	if now == nil {
		now = time.Now
	}
	return &InterviewService{
		interviews: interviews,
		users:      users,
		activity:   activityRecorder{repo: activities, now: now},
		now:        now,
		logger:     defaultLogger(logger),
	}
}

func (s *InterviewService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InterviewService", operation, attrs...)
}

func (s *InterviewService) ready() error {
	if s == nil {
		return fmt.Errorf("InterviewService is nil")
	}
	if s.interviews == nil || s.users == nil {
		return fmt.Errorf("interview repositories not configured")
	}
	return nil
}

// Schedule creates one interview per distinct candidate with shared details.
// Either every row is stored or none is.
func (s *InterviewService) Schedule(ctx context.Context, params ScheduleInterviewParams) (created []persistence.Interview, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Schedule", "principal_id", params.Principal.UserID, "date", params.Date, "time", params.Time)
	defer func() { logOutcome(ctx, logger, err, "interview scheduling", "count", len(created)) }()

	if err = requireAdmin(params.Principal); err != nil {
		return
	}

	vErr := &ValidationError{}
	validateSlot(vErr, params.Date, params.Time)
	if !oneOf(params.Type, InterviewTypes) {
		vErr.add("type", "type must be In-person, Phone or Video")
	}
	if !oneOf(params.Stage, InterviewStages) {
		vErr.add("stage", "stage must be First, Second or Final")
	}
	requireText(vErr, "role", params.Role, "role is required")

	candidates := uniqueIDs(params.CandidateIDs)
	if len(candidates) == 0 {
		vErr.add("candidate_ids", "select at least one candidate")
	}
	for _, id := range candidates {
		user, lookupErr := s.users.GetUser(ctx, id)
		if lookupErr != nil || user.Role != persistence.RoleCandidate {
			vErr.add("candidate_ids", fmt.Sprintf("candidate %d does not exist", id))
			break
		}
	}
	if err = vErr.orNil(); err != nil {
		return
	}

	now := s.now()
	rows := make([]persistence.Interview, 0, len(candidates))
	for _, id := range candidates {
		rows = append(rows, persistence.Interview{
			CandidateID: id,
			Date:        params.Date,
			Time:        params.Time,
			Type:        params.Type,
			Role:        strings.TrimSpace(params.Role),
			DressCode:   strings.TrimSpace(params.DressCode),
			Stage:       params.Stage,
			Status:      persistence.InterviewScheduled,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if created, err = s.interviews.CreateInterviews(ctx, rows); err != nil {
		err = translateStoreError(err)
		return
	}
	for _, iv := range created {
		s.activity.record(ctx, logger, ActivityInterviewScheduled, fmt.Sprintf("%s %s interview on %s %s", iv.Stage, iv.Type, iv.Date, iv.Time), iv.CandidateID)
	}
	return
}

// List returns every interview, latest slot first.
func (s *InterviewService) List(ctx context.Context, principal Principal) ([]persistence.Interview, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.interviews.ListInterviews(ctx, 0)
}

// ListOwn returns the candidate's interviews.
func (s *InterviewService) ListOwn(ctx context.Context, principal Principal) ([]persistence.Interview, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireCandidate(principal); err != nil {
		return nil, err
	}
	return s.interviews.ListInterviews(ctx, principal.UserID)
}

// UpdateStatus sets an administrator-controlled status.
func (s *InterviewService) UpdateStatus(ctx context.Context, principal Principal, id int64, status persistence.InterviewStatus) (iv persistence.Interview, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateStatus", "principal_id", principal.UserID, "interview_id", id, "status", status)
	defer func() { logOutcome(ctx, logger, err, "interview status change") }()

	if err = requireAdmin(principal); err != nil {
		return
	}
	switch status {
	case persistence.InterviewScheduled, persistence.InterviewCompleted, persistence.InterviewCancelled, persistence.InterviewPostponed:
	default:
		err = validationFailure("status", "status must be scheduled, completed, cancelled or postponed")
		return
	}

	if iv, err = s.interviews.GetInterview(ctx, id); err != nil {
		err = translateStoreError(err)
		return
	}
	iv.Status = status
	iv.UpdatedAt = s.now()
	err = translateStoreError(s.interviews.UpdateInterview(ctx, iv))
	return
}

// Reschedule moves an interview to a new slot in place.
func (s *InterviewService) Reschedule(ctx context.Context, principal Principal, id int64, date, clock string) (iv persistence.Interview, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Reschedule", "principal_id", principal.UserID, "interview_id", id, "date", date, "time", clock)
	defer func() { logOutcome(ctx, logger, err, "interview reschedule") }()

	if err = requireAdmin(principal); err != nil {
		return
	}
	vErr := &ValidationError{}
	validateSlot(vErr, date, clock)
	if err = vErr.orNil(); err != nil {
		return
	}

	if iv, err = s.interviews.GetInterview(ctx, id); err != nil {
		err = translateStoreError(err)
		return
	}
	iv.Date = date
	iv.Time = clock
	iv.Status = persistence.InterviewRescheduled
	iv.UpdatedAt = s.now()
	err = translateStoreError(s.interviews.UpdateInterview(ctx, iv))
	return
}

// Respond records the candidate's reply to one of their interviews.
func (s *InterviewService) Respond(ctx context.Context, principal Principal, id int64, response, note string) (iv persistence.Interview, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Respond", "principal_id", principal.UserID, "interview_id", id, "response", response)
	defer func() { logOutcome(ctx, logger, err, "interview response") }()

	if err = requireCandidate(principal); err != nil {
		return
	}
	if !oneOf(response, InterviewResponses) {
		err = validationFailure("response", "response must be Yes, No or Reschedule Request")
		return
	}

	if iv, err = s.interviews.GetInterview(ctx, id); err != nil {
		err = translateStoreError(err)
		return
	}
	if iv.CandidateID != principal.UserID {
		err = ErrNotFound
		return
	}
	iv.CandidateResponse = response
	iv.CandidateNote = strings.TrimSpace(note)
	iv.UpdatedAt = s.now()
	err = translateStoreError(s.interviews.UpdateInterview(ctx, iv))
	return
}

func validateSlot(v *ValidationError, date, clock string) {
	if _, err := time.Parse(interviewDateLayout, date); err != nil {
		v.add("date", "date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(interviewTimeLayout, clock); err != nil {
		v.add("time", "time must be HH:MM")
	}
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
