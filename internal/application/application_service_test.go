package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/recruitment-portal/internal/persistence"
	"github.com/example/recruitment-portal/internal/resume"
)

func validForm() persistence.ApplicationForm {
	var form persistence.ApplicationForm
	form.PersonalInfo.FullName = "Ada Lovelace"
	form.PersonalInfo.Email = "Ada@Example.com"
	form.PersonalInfo.Phone = "+44 20 7946 0000"
	form.ProfessionalInfo.Position = "Analyst"
	return form
}

func TestApplicationService_Submit(t *testing.T) {
	t.Parallel()

	t.Run("stores form and attachments once per candidate", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		f := newPortalFixture(t)
		svc := NewApplicationService(ApplicationDependencies{Applications: f.storage, Activities: f.storage, Now: f.clock.NowFunc()})

		first, err := svc.Submit(ctx, SubmitApplicationParams{Principal: f.candidate, Form: validForm(), Resume: []byte("r1"), CoverLetter: []byte("c1")})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if first.Status != persistence.ApplicationSubmitted || first.Form.PersonalInfo.Email != "ada@example.com" {
			t.Fatalf("unexpected application %#v", first)
		}

		second, err := svc.Submit(ctx, SubmitApplicationParams{Principal: f.candidate, Form: validForm(), Resume: []byte("r2"), CoverLetter: []byte("c2")})
		if err != nil {
			t.Fatalf("resubmission failed: %v", err)
		}
		if second.ID != first.ID {
			t.Fatalf("expected the same row to be replaced, got %d and %d", first.ID, second.ID)
		}

		data, err := svc.Attachment(ctx, f.admin, first.ID, AttachmentResume)
		if err != nil {
			t.Fatalf("Attachment failed: %v", err)
		}
		if string(data) != "r2" {
			t.Fatalf("expected replaced resume, got %q", data)
		}

		if _, err := svc.UpdateStatus(ctx, f.admin, first.ID, persistence.ApplicationUnderReview); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		_, err = svc.Submit(ctx, SubmitApplicationParams{Principal: f.candidate, Form: validForm(), Resume: []byte("r3"), CoverLetter: []byte("c3")})
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition once under review, got %v", err)
		}
	})

	t.Run("validates required fields and formats", func(t *testing.T) {
		t.Parallel()
		f := newPortalFixture(t)
		svc := NewApplicationService(ApplicationDependencies{Applications: f.storage, Now: f.clock.NowFunc(), MaxUploadBytes: 4})

		form := validForm()
		form.PersonalInfo.Email = "nope"
		form.PersonalInfo.Phone = "abc"
		form.ProfessionalInfo.Position = " "
		form.References = make([]persistence.Reference, 3)

		_, err := svc.Submit(context.Background(), SubmitApplicationParams{Principal: f.candidate, Form: form, Resume: []byte("too large")})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"personal_info.email", "personal_info.phone", "professional_info.position", "references", "resume", "cover_letter"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s to be reported, got %#v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("administrators cannot apply", func(t *testing.T) {
		t.Parallel()
		f := newPortalFixture(t)
		svc := NewApplicationService(ApplicationDependencies{Applications: f.storage})

		_, err := svc.Submit(context.Background(), SubmitApplicationParams{Principal: f.admin, Form: validForm(), Resume: []byte("r"), CoverLetter: []byte("c")})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestApplicationService_Review(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	svc := NewApplicationService(ApplicationDependencies{
		Applications: f.storage,
		Now:          f.clock.NowFunc(),
		ExtractText: func(data []byte) (string, error) {
			if string(data) == "not a pdf" {
				return "", resume.ErrNotPDF
			}
			return "extracted " + string(data), nil
		},
	})

	app, err := svc.Submit(ctx, SubmitApplicationParams{Principal: f.candidate, Form: validForm(), Resume: []byte("cv"), CoverLetter: []byte("letter")})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, f.admin, app.ID, persistence.ApplicationSubmitted); err == nil {
		t.Fatal("expected submitted to be rejected as a review status")
	}
	if _, err := svc.UpdateStatus(ctx, f.admin, app.ID, persistence.ApplicationAccepted); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	accepted, err := svc.List(ctx, f.admin, persistence.ApplicationAccepted)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(accepted) != 1 || accepted[0].ApplicantEmail == "" {
		t.Fatalf("expected one accepted application with applicant email, got %#v", accepted)
	}

	text, err := svc.ResumeText(ctx, f.admin, app.ID)
	if err != nil || text != "extracted cv" {
		t.Fatalf("ResumeText = %q, %v", text, err)
	}

	current, err := svc.GetCurrent(ctx, f.candidate)
	if err != nil {
		t.Fatalf("GetCurrent failed: %v", err)
	}
	if current.Status != persistence.ApplicationAccepted || current.Resume != nil {
		t.Fatalf("unexpected current application %#v", current)
	}
	if _, err := svc.GetCurrent(ctx, f.other); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for candidate without application, got %v", err)
	}
}
