package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/recruitment-portal/internal/persistence"
)

func TestInterviewService_Schedule(t *testing.T) {
	t.Parallel()

	t.Run("creates one row per candidate", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		f := newPortalFixture(t)
		svc := NewInterviewService(f.storage, f.storage, f.storage, f.clock.NowFunc())

		created, err := svc.Schedule(ctx, ScheduleInterviewParams{
			Principal:    f.admin,
			CandidateIDs: []int64{f.candidate.UserID, f.other.UserID, f.candidate.UserID},
			Date:         "2024-01-10",
			Time:         "10:00",
			Type:         "Video",
			Role:         "Backend Engineer",
			Stage:        "First",
		})
		if err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
		if len(created) != 2 {
			t.Fatalf("expected 2 interviews, got %d", len(created))
		}

		for _, who := range []Principal{f.candidate, f.other} {
			own, err := svc.ListOwn(ctx, who)
			if err != nil {
				t.Fatalf("ListOwn failed: %v", err)
			}
			if len(own) != 1 || own[0].Date != "2024-01-10" || own[0].Time != "10:00" || own[0].Type != "Video" {
				t.Fatalf("unexpected interviews for %d: %#v", who.UserID, own)
			}
		}
	})

	t.Run("rejects unknown candidates without writing", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		f := newPortalFixture(t)
		svc := NewInterviewService(f.storage, f.storage, nil, f.clock.NowFunc())

		_, err := svc.Schedule(ctx, ScheduleInterviewParams{
			Principal:    f.admin,
			CandidateIDs: []int64{f.candidate.UserID, f.admin.UserID},
			Date:         "2024-01-10",
			Time:         "10:00",
			Type:         "Carrier pigeon",
			Role:         "Engineer",
			Stage:        "First",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["candidate_ids"]; !ok {
			t.Fatalf("expected candidate_ids to be reported, got %#v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["type"]; !ok {
			t.Fatalf("expected type to be reported, got %#v", vErr.FieldErrors)
		}

		all, err := svc.List(ctx, f.admin)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 0 {
			t.Fatalf("expected no interviews, got %d", len(all))
		}
	})
}

func TestInterviewService_UpdatesAndResponses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	svc := NewInterviewService(f.storage, f.storage, nil, f.clock.NowFunc())

	created, err := svc.Schedule(ctx, ScheduleInterviewParams{
		Principal: f.admin, CandidateIDs: []int64{f.candidate.UserID},
		Date: "2024-02-01", Time: "09:30", Type: "Phone", Role: "Analyst", Stage: "Second",
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	id := created[0].ID

	if _, err := svc.UpdateStatus(ctx, f.admin, id, persistence.InterviewRescheduled); err == nil {
		t.Fatal("expected rescheduled to be reserved for Reschedule")
	}
	moved, err := svc.Reschedule(ctx, f.admin, id, "2024-02-03", "14:00")
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if moved.Status != persistence.InterviewRescheduled || moved.Date != "2024-02-03" {
		t.Fatalf("unexpected rescheduled interview %#v", moved)
	}

	if _, err := svc.Respond(ctx, f.other, id, "Yes", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected other candidate to be rejected, got %v", err)
	}
	if _, err := svc.Respond(ctx, f.candidate, id, "Maybe", ""); err == nil {
		t.Fatal("expected unknown response to be rejected")
	}
	answered, err := svc.Respond(ctx, f.candidate, id, "Reschedule Request", " travelling ")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if answered.CandidateResponse != "Reschedule Request" || answered.CandidateNote != "travelling" {
		t.Fatalf("unexpected response %#v", answered)
	}

	stored, err := f.storage.GetInterview(ctx, id)
	if err != nil {
		t.Fatalf("GetInterview failed: %v", err)
	}
	if stored.Time != "14:00" || stored.CandidateResponse != "Reschedule Request" {
		t.Fatalf("expected updates to persist, got %#v", stored)
	}
}
