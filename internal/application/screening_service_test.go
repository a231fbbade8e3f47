package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/recruitment-portal/internal/persistence"
	"github.com/example/recruitment-portal/internal/persistence/sqlite"
)

func sampleQuestions() persistence.QuestionSet {
	return persistence.QuestionSet{
		persistence.MultipleChoiceQuestion{Text: "2+2", Options: []string{"3", "4"}, CorrectAnswer: "4"},
		persistence.MultipleChoiceQuestion{Text: "Capital of France", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
		persistence.FreeTextQuestion{Text: "Tell us about yourself"},
		persistence.MultipleChoiceQuestion{Text: "Go keyword", Options: []string{"func", "def"}, CorrectAnswer: "func"},
	}
}

func TestCalculateScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		questions persistence.QuestionSet
		responses []string
		want      float64
	}{
		{name: "all correct counts free text in the denominator", questions: sampleQuestions(), responses: []string{"4", "Paris", "hello", "func"}, want: 75},
		{name: "exact match only", questions: sampleQuestions(), responses: []string{"4", "paris", "", "func "}, want: 25},
		{name: "missing responses score nothing", questions: sampleQuestions(), responses: []string{"4"}, want: 25},
		{name: "free text only", questions: persistence.QuestionSet{persistence.FreeTextQuestion{Text: "why"}}, responses: []string{"because"}, want: 0},
		{name: "no questions", questions: nil, responses: []string{"x"}, want: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateScore(tc.questions, tc.responses); got != tc.want {
				t.Fatalf("CalculateScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScreeningService_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	svc := NewScreeningService(f.storage, f.storage, f.storage, f.clock.NowFunc())

	test, err := svc.CreateTest(ctx, CreateTestParams{Principal: f.admin, Title: "Basics", Questions: sampleQuestions(), DurationMinutes: 20})
	if err != nil {
		t.Fatalf("CreateTest failed: %v", err)
	}

	result, err := svc.Assign(ctx, f.admin, test.ID, []int64{f.candidate.UserID, f.candidate.UserID, 9999})
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if len(result.Assigned) != 1 || !errors.Is(result.Skipped[9999], ErrNotFound) {
		t.Fatalf("unexpected assign result %#v", result)
	}
	again, err := svc.Assign(ctx, f.admin, test.ID, []int64{f.candidate.UserID})
	if err != nil {
		t.Fatalf("second Assign failed: %v", err)
	}
	if !errors.Is(again.Skipped[f.candidate.UserID], ErrAlreadyExists) {
		t.Fatalf("expected duplicate assignment to be skipped, got %#v", again)
	}

	if _, err := svc.Submit(ctx, f.candidate, test.ID, []string{"4"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected submit before start to fail, got %v", err)
	}
	if _, err := svc.Start(ctx, f.other, test.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected unassigned candidate to be rejected, got %v", err)
	}

	view, _, err := svc.GetAssignedTest(ctx, f.candidate, test.ID)
	if err != nil {
		t.Fatalf("GetAssignedTest failed: %v", err)
	}
	if mc := view.Questions[0].(persistence.MultipleChoiceQuestion); mc.CorrectAnswer != "" {
		t.Fatalf("expected correct answers to be hidden, got %q", mc.CorrectAnswer)
	}

	if _, err := svc.Start(ctx, f.candidate, test.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Start(ctx, f.candidate, test.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected second start to fail, got %v", err)
	}

	done, err := svc.Submit(ctx, f.candidate, test.ID, []string{"4", "Rome", "text", "func"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if done.Status != persistence.AssignmentCompleted || done.Score == nil || *done.Score != 50 {
		t.Fatalf("unexpected completed assignment %#v", done)
	}
	if _, err := svc.Submit(ctx, f.candidate, test.ID, []string{"4"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected resubmission to fail, got %v", err)
	}

	stored, err := f.storage.GetAssignment(ctx, test.ID, f.candidate.UserID)
	if err != nil {
		t.Fatalf("GetAssignment failed: %v", err)
	}
	if stored.StartedAt == nil || stored.CompletedAt == nil || len(stored.Responses) != 4 {
		t.Fatalf("expected timings and responses to persist, got %#v", stored)
	}
}

func TestScreeningService_CreateTestValidation(t *testing.T) {
	t.Parallel()

	f := newPortalFixture(t)
	svc := NewScreeningService(f.storage, f.storage, nil, f.clock.NowFunc())

	_, err := svc.CreateTest(context.Background(), CreateTestParams{
		Principal: f.admin,
		Questions: persistence.QuestionSet{
			persistence.MultipleChoiceQuestion{Text: "one option", Options: []string{"a"}, CorrectAnswer: "a"},
			persistence.MultipleChoiceQuestion{Text: "bad answer", Options: []string{"a", "b"}, CorrectAnswer: "c"},
		},
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "duration_minutes", "questions[0]", "questions[1]"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s to be reported, got %#v", field, vErr.FieldErrors)
		}
	}

	if _, err := svc.CreateTest(context.Background(), CreateTestParams{Principal: f.candidate, Title: "x"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected candidates to be rejected, got %v", err)
	}
}

// racingScreening lets another submission land between the read and the write.
type racingScreening struct {
	*sqlite.Storage
	race func(persistence.TestAssignment)
}

func (r racingScreening) GetAssignment(ctx context.Context, testID, candidateID int64) (persistence.TestAssignment, error) {
	assignment, err := r.Storage.GetAssignment(ctx, testID, candidateID)
	if err == nil && r.race != nil {
		r.race(assignment)
	}
	return assignment, err
}

func TestScreeningService_SubmitLosesConcurrentRace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	setup := NewScreeningService(f.storage, f.storage, f.storage, f.clock.NowFunc())

	test, err := setup.CreateTest(ctx, CreateTestParams{Principal: f.admin, Title: "Basics", Questions: sampleQuestions(), DurationMinutes: 20})
	if err != nil {
		t.Fatalf("CreateTest failed: %v", err)
	}
	if _, err := setup.Assign(ctx, f.admin, test.ID, []int64{f.candidate.UserID}); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if _, err := setup.Start(ctx, f.candidate, test.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	repo := racingScreening{Storage: f.storage}
	repo.race = func(assignment persistence.TestAssignment) {
		score := 100.0
		now := f.clock.Now()
		assignment.Status = persistence.AssignmentCompleted
		assignment.CompletedAt = &now
		assignment.Score = &score
		assignment.Responses = []string{"4", "Paris", "x", "func"}
		if err := f.storage.UpdateAssignment(ctx, assignment, persistence.AssignmentInProgress); err != nil {
			t.Errorf("concurrent submit failed: %v", err)
		}
	}
	svc := NewScreeningService(repo, f.storage, f.storage, f.clock.NowFunc())

	if _, err := svc.Submit(ctx, f.candidate, test.ID, []string{"3"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected the later submit to lose, got %v", err)
	}

	stored, err := f.storage.GetAssignment(ctx, test.ID, f.candidate.UserID)
	if err != nil {
		t.Fatalf("GetAssignment failed: %v", err)
	}
	if stored.Score == nil || *stored.Score != 100 {
		t.Fatalf("expected the first submission to stand, got %#v", stored)
	}
}
