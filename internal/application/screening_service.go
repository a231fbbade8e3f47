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

const minChoiceOptions = 2

// ScreeningService authors screening tests, assigns them and grades submissions.
type ScreeningService struct {
	tests    persistence.ScreeningRepository
	users    persistence.UserRepository
	activity activityRecorder
	now      func() time.Time
	logger   *slog.Logger
}

// NewScreeningService constructs a ScreeningService.
func NewScreeningService(tests persistence.ScreeningRepository, users persistence.UserRepository, activities persistence.ActivityRepository, now func() time.Time) *ScreeningService {
	return NewScreeningServiceWithLogger(tests, users, activities, now, nil)
}

// NewScreeningServiceWithLogger constructs a ScreeningService with a specified logger.
func NewScreeningServiceWithLogger(tests persistence.ScreeningRepository, users persistence.UserRepository, activities persistence.ActivityRepository, now func() time.Time, logger *slog.Logger) *ScreeningService {
	if now == nil {
		now = time.Now
	}
	return &ScreeningService{
		tests:    tests,
		users:    users,
		activity: activityRecorder{repo: activities, now: now},
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *ScreeningService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScreeningService", operation, attrs...)
}

func (s *ScreeningService) ready() error {
	if s == nil {
		return fmt.Errorf("ScreeningService is nil")
	}
	if s.tests == nil {
		return fmt.Errorf("screening repository not configured")
	}
	return nil
}

// CalculateScore grades responses positionally against questions. Each multiple-choice
// response that equals the correct answer exactly counts once; the count is divided by
// the total number of questions, free text included, and scaled to 100.
func CalculateScore(questions persistence.QuestionSet, responses []string) float64 {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range questions {
		mc, ok := q.(persistence.MultipleChoiceQuestion)
		if !ok || i >= len(responses) {
			continue
		}
		if responses[i] == mc.CorrectAnswer {
			correct++
		}
	}
	return float64(correct) / float64(len(questions)) * 100
}

// CreateTest validates and stores a screening test.
func (s *ScreeningService) CreateTest(ctx context.Context, params CreateTestParams) (test persistence.ScreeningTest, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateTest", "principal_id", params.Principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "screening test creation", "test_id", test.ID) }()

	if err = requireAdmin(params.Principal); err != nil {
		return
	}
	if err = validateTest(params); err != nil {
		return
	}

	test, err = s.tests.CreateTest(ctx, persistence.ScreeningTest{
		Title:           strings.TrimSpace(params.Title),
		Description:     strings.TrimSpace(params.Description),
		Questions:       params.Questions,
		DurationMinutes: params.DurationMinutes,
		CreatedBy:       params.Principal.UserID,
		CreatedAt:       s.now(),
	})
	err = translateStoreError(err)
	return
}

func validateTest(params CreateTestParams) error {
	vErr := &ValidationError{}
	requireText(vErr, "title", params.Title, "title is required")
	if params.DurationMinutes <= 0 {
		vErr.add("duration_minutes", "duration must be positive")
	}
	if len(params.Questions) == 0 {
		vErr.add("questions", "at least one question is required")
	}
	for i, q := range params.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		if q == nil {
			vErr.add(field, "question is empty")
			continue
		}
		if strings.TrimSpace(q.Prompt()) == "" {
			vErr.add(field, "question text is required")
			continue
		}
		mc, ok := q.(persistence.MultipleChoiceQuestion)
		if !ok {
			continue
		}
		if len(mc.Options) < minChoiceOptions {
			vErr.add(field, "multiple choice questions need at least two options")
			continue
		}
		found := false
		for _, opt := range mc.Options {
			if opt == mc.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			vErr.add(field, "correct answer must be one of the options")
		}
	}
	return vErr.orNil()
}

// ListTests returns every screening test.
func (s *ScreeningService) ListTests(ctx context.Context, principal Principal) ([]persistence.ScreeningTest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.tests.ListTests(ctx)
}

// GetTest returns a test including correct answers.
func (s *ScreeningService) GetTest(ctx context.Context, principal Principal, id int64) (persistence.ScreeningTest, error) {
	if err := s.ready(); err != nil {
		return persistence.ScreeningTest{}, err
	}
	if err := requireAdmin(principal); err != nil {
		return persistence.ScreeningTest{}, err
	}
	test, err := s.tests.GetTest(ctx, id)
	return test, translateStoreError(err)
}

// Assign gives the test to each candidate. Candidates already holding the test,
// unknown ids and non-candidates are reported in Skipped.
func (s *ScreeningService) Assign(ctx context.Context, principal Principal, testID int64, candidateIDs []int64) (result AssignTestResult, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Assign", "principal_id", principal.UserID, "test_id", testID)
	defer func() {
		logOutcome(ctx, logger, err, "test assignment", "assigned", len(result.Assigned), "skipped", len(result.Skipped))
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if len(candidateIDs) == 0 {
		err = validationFailure("candidate_ids", "select at least one candidate")
		return
	}

	var test persistence.ScreeningTest
	if test, err = s.tests.GetTest(ctx, testID); err != nil {
		err = translateStoreError(err)
		return
	}

	result.Skipped = make(map[int64]error)
	seen := make(map[int64]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if s.users != nil {
			user, userErr := s.users.GetUser(ctx, id)
			if userErr != nil || user.Role != persistence.RoleCandidate {
				result.Skipped[id] = ErrNotFound
				continue
			}
		}

		assignment, createErr := s.tests.CreateAssignment(ctx, persistence.TestAssignment{
			TestID:      testID,
			CandidateID: id,
			Status:      persistence.AssignmentAssigned,
			AssignedAt:  s.now(),
		})
		if createErr != nil {
			switch {
			case errors.Is(createErr, persistence.ErrDuplicate):
				result.Skipped[id] = ErrAlreadyExists
			case errors.Is(createErr, persistence.ErrForeignKeyViolation):
				result.Skipped[id] = ErrNotFound
			default:
				err = createErr
				return
			}
			continue
		}
		assignment.TestTitle = test.Title
		result.Assigned = append(result.Assigned, assignment)
		s.activity.record(ctx, logger, ActivityTestAssigned, test.Title, id)
	}
	return
}

// ListTestAssignments returns the assignments of one test for review.
func (s *ScreeningService) ListTestAssignments(ctx context.Context, principal Principal, testID int64) ([]persistence.TestAssignment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.tests.ListAssignments(ctx, persistence.AssignmentFilter{TestID: testID})
}

// ListAssignments returns the candidate's own assignments.
func (s *ScreeningService) ListAssignments(ctx context.Context, principal Principal) ([]persistence.TestAssignment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireCandidate(principal); err != nil {
		return nil, err
	}
	return s.tests.ListAssignments(ctx, persistence.AssignmentFilter{CandidateID: principal.UserID})
}

// GetAssignedTest returns a test the candidate holds, with correct answers removed.
func (s *ScreeningService) GetAssignedTest(ctx context.Context, principal Principal, testID int64) (persistence.ScreeningTest, persistence.TestAssignment, error) {
	assignment, err := s.assignment(ctx, principal, testID)
	if err != nil {
		return persistence.ScreeningTest{}, persistence.TestAssignment{}, err
	}
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return persistence.ScreeningTest{}, persistence.TestAssignment{}, translateStoreError(err)
	}
	test.Questions = withoutAnswers(test.Questions)
	return test, assignment, nil
}

// Start moves the candidate's assignment from assigned to in_progress.
func (s *ScreeningService) Start(ctx context.Context, principal Principal, testID int64) (assignment persistence.TestAssignment, err error) {
	logger := s.loggerWith(ctx, "Start", "principal_id", principal.UserID, "test_id", testID)
	defer func() { logOutcome(ctx, logger, err, "test start") }()

	if assignment, err = s.assignment(ctx, principal, testID); err != nil {
		return
	}
	if assignment.Status != persistence.AssignmentAssigned {
		err = ErrInvalidTransition
		return
	}

	now := s.now()
	assignment.Status = persistence.AssignmentInProgress
	assignment.StartedAt = &now
	err = s.transition(ctx, assignment, persistence.AssignmentAssigned)
	return
}

// Submit records the candidate's responses, grades them and completes the assignment.
func (s *ScreeningService) Submit(ctx context.Context, principal Principal, testID int64, responses []string) (assignment persistence.TestAssignment, err error) {
	logger := s.loggerWith(ctx, "Submit", "principal_id", principal.UserID, "test_id", testID)
	defer func() { logOutcome(ctx, logger, err, "test submission", "assignment_id", assignment.ID) }()

	if assignment, err = s.assignment(ctx, principal, testID); err != nil {
		return
	}
	if assignment.Status != persistence.AssignmentInProgress {
		err = ErrInvalidTransition
		return
	}

	var test persistence.ScreeningTest
	if test, err = s.tests.GetTest(ctx, testID); err != nil {
		err = translateStoreError(err)
		return
	}
	if len(responses) > len(test.Questions) {
		err = validationFailure("responses", "more responses than questions")
		return
	}

	now := s.now()
	score := CalculateScore(test.Questions, responses)
	assignment.Status = persistence.AssignmentCompleted
	assignment.CompletedAt = &now
	assignment.Responses = responses
	assignment.Score = &score
	if err = s.transition(ctx, assignment, persistence.AssignmentInProgress); err != nil {
		return
	}

	s.activity.record(ctx, logger, ActivityTestCompleted, fmt.Sprintf("%s scored %.1f", test.Title, score), principal.UserID)
	return
}

// transition writes assignment only if no concurrent request moved it away from "from" first.
func (s *ScreeningService) transition(ctx context.Context, assignment persistence.TestAssignment, from persistence.AssignmentStatus) error {
	err := s.tests.UpdateAssignment(ctx, assignment, from)
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrInvalidTransition
	}
	return translateStoreError(err)
}

func (s *ScreeningService) assignment(ctx context.Context, principal Principal, testID int64) (persistence.TestAssignment, error) {
	if err := s.ready(); err != nil {
		return persistence.TestAssignment{}, err
	}
	if err := requireCandidate(principal); err != nil {
		return persistence.TestAssignment{}, err
	}
	assignment, err := s.tests.GetAssignment(ctx, testID, principal.UserID)
	return assignment, translateStoreError(err)
}

func withoutAnswers(questions persistence.QuestionSet) persistence.QuestionSet {
	out := make(persistence.QuestionSet, 0, len(questions))
	for _, q := range questions {
		if mc, ok := q.(persistence.MultipleChoiceQuestion); ok {
			mc.CorrectAnswer = ""
			out = append(out, mc)
			continue
		}
		out = append(out, q)
	}
	return out
}
