package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
	"github.com/example/recruitment-portal/internal/resume"
)

const maxReferences = 2

// AttachmentKind selects one of the two files stored with an application.
type AttachmentKind string

const (
	AttachmentResume      AttachmentKind = "resume"
	AttachmentCoverLetter AttachmentKind = "cover_letter"
)

// ApplicationDependencies groups the collaborators of ApplicationService.
type ApplicationDependencies struct {
	Applications   persistence.ApplicationRepository
	Activities     persistence.ActivityRepository
	ExtractText    func([]byte) (string, error)
	Now            func() time.Time
	MaxUploadBytes int64
}

// ApplicationService handles candidate intake and the administrator review queue.
type ApplicationService struct {
	apps        persistence.ApplicationRepository
	activity    activityRecorder
	extractText func([]byte) (string, error)
	now         func() time.Time
	maxUpload   int64
	logger      *slog.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	return NewApplicationServiceWithLogger(deps, nil)
}

// NewApplicationServiceWithLogger constructs an ApplicationService with a specified logger.
func NewApplicationServiceWithLogger(deps ApplicationDependencies, logger *slog.Logger) *ApplicationService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ExtractText == nil {
		deps.ExtractText = resume.ExtractText
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &ApplicationService{
		apps:        deps.Applications,
		activity:    activityRecorder{repo: deps.Activities, now: deps.Now},
		extractText: deps.ExtractText,
		now:         deps.Now,
		maxUpload:   deps.MaxUploadBytes,
		logger:      defaultLogger(logger),
	}
}

func (s *ApplicationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ApplicationService", operation, attrs...)
}

func (s *ApplicationService) ready() error {
	if s == nil {
		return fmt.Errorf("ApplicationService is nil")
	}
	if s.apps == nil {
		return fmt.Errorf("application repository not configured")
	}
	return nil
}

// Submit stores the candidate's application. Resubmission replaces the form and
// attachments while the application has not been picked up for review.
func (s *ApplicationService) Submit(ctx context.Context, params SubmitApplicationParams) (app persistence.Application, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Submit", "principal_id", params.Principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "application submission", "application_id", app.ID) }()

	if err = requireCandidate(params.Principal); err != nil {
		return
	}

	form := normalizeForm(params.Form)
	if err = s.validateSubmission(form, params.Resume, params.CoverLetter); err != nil {
		return
	}

	now := s.now()
	existing, lookupErr := s.apps.GetLatestApplication(ctx, params.Principal.UserID)
	switch {
	case lookupErr == nil:
		if existing.Status != persistence.ApplicationSubmitted {
			err = ErrInvalidTransition
			return
		}
		existing.Form = form
		existing.Resume = params.Resume
		existing.CoverLetter = params.CoverLetter
		existing.ModifiedAt = now
		if err = s.apps.UpdateApplication(ctx, existing); err != nil {
			err = translateStoreError(err)
			return
		}
		app = existing
	case errors.Is(lookupErr, persistence.ErrNotFound):
		app, err = s.apps.CreateApplication(ctx, persistence.Application{
			UserID:      params.Principal.UserID,
			Form:        form,
			Status:      persistence.ApplicationSubmitted,
			SubmittedAt: now,
			ModifiedAt:  now,
			Resume:      params.Resume,
			CoverLetter: params.CoverLetter,
		})
		if err != nil {
			err = translateStoreError(err)
			return
		}
	default:
		err = lookupErr
		return
	}

	s.activity.record(ctx, logger, ActivityApplicationSubmit, "application from "+form.PersonalInfo.FullName, params.Principal.UserID)
	return
}

func (s *ApplicationService) validateSubmission(form persistence.ApplicationForm, resumeData, coverLetter []byte) error {
	vErr := &ValidationError{}
	requireText(vErr, "personal_info.full_name", form.PersonalInfo.FullName, "full name is required")
	validateEmail(vErr, "personal_info.email", form.PersonalInfo.Email)
	validatePhone(vErr, "personal_info.phone", form.PersonalInfo.Phone, true)
	requireText(vErr, "professional_info.position", form.ProfessionalInfo.Position, "position is required")
	if len(form.References) > maxReferences {
		vErr.add("references", fmt.Sprintf("at most %d references are accepted", maxReferences))
	}
	switch {
	case len(resumeData) == 0:
		vErr.add("resume", "resume is required")
	case int64(len(resumeData)) > s.maxUpload:
		vErr.add("resume", "resume exceeds the upload limit")
	}
	switch {
	case len(coverLetter) == 0:
		vErr.add("cover_letter", "cover letter is required")
	case int64(len(coverLetter)) > s.maxUpload:
		vErr.add("cover_letter", "cover letter exceeds the upload limit")
	}
	return vErr.orNil()
}

func normalizeForm(form persistence.ApplicationForm) persistence.ApplicationForm {
	form.PersonalInfo.FullName = strings.TrimSpace(form.PersonalInfo.FullName)
	form.PersonalInfo.Email = normalizeEmail(form.PersonalInfo.Email)
	form.PersonalInfo.Phone = strings.TrimSpace(form.PersonalInfo.Phone)
	form.PersonalInfo.Address = strings.TrimSpace(form.PersonalInfo.Address)
	form.ProfessionalInfo.Position = strings.TrimSpace(form.ProfessionalInfo.Position)
	return form
}

// GetCurrent returns the candidate's latest application without attachments.
func (s *ApplicationService) GetCurrent(ctx context.Context, principal Principal) (persistence.Application, error) {
	if err := s.ready(); err != nil {
		return persistence.Application{}, err
	}
	if err := requireCandidate(principal); err != nil {
		return persistence.Application{}, err
	}
	app, err := s.apps.GetLatestApplication(ctx, principal.UserID)
	if err != nil {
		return persistence.Application{}, translateStoreError(err)
	}
	app.Resume, app.CoverLetter = nil, nil
	return app, nil
}

// List returns every application, optionally narrowed to one status.
func (s *ApplicationService) List(ctx context.Context, principal Principal, status persistence.ApplicationStatus) ([]persistence.Application, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if status != "" && !validApplicationStatus(status) {
		return nil, validationFailure("status", "unknown application status")
	}
	return s.apps.ListApplications(ctx, persistence.ApplicationFilter{Status: status})
}

// Get loads one application including attachments.
func (s *ApplicationService) Get(ctx context.Context, principal Principal, id int64) (persistence.Application, error) {
	if err := s.ready(); err != nil {
		return persistence.Application{}, err
	}
	if err := requireAdmin(principal); err != nil {
		return persistence.Application{}, err
	}
	app, err := s.apps.GetApplication(ctx, id)
	return app, translateStoreError(err)
}

// UpdateStatus moves an application through review.
func (s *ApplicationService) UpdateStatus(ctx context.Context, principal Principal, id int64, status persistence.ApplicationStatus) (app persistence.Application, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateStatus", "principal_id", principal.UserID, "application_id", id, "status", status)
	defer func() { logOutcome(ctx, logger, err, "application status change") }()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if status == persistence.ApplicationSubmitted || !validApplicationStatus(status) {
		err = validationFailure("status", "status must be under_review, interview_scheduled, accepted or rejected")
		return
	}

	if app, err = s.apps.GetApplication(ctx, id); err != nil {
		err = translateStoreError(err)
		return
	}
	app.Status = status
	app.ModifiedAt = s.now()
	if err = s.apps.UpdateApplication(ctx, app); err != nil {
		err = translateStoreError(err)
		return
	}

	s.activity.record(ctx, logger, ActivityApplicationStatus, fmt.Sprintf("application %d set to %s", id, status), app.UserID)
	app.Resume, app.CoverLetter = nil, nil
	return
}

// Attachment returns the raw bytes of one application file.
func (s *ApplicationService) Attachment(ctx context.Context, principal Principal, id int64, kind AttachmentKind) ([]byte, error) {
	app, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch kind {
	case AttachmentResume:
		data = app.Resume
	case AttachmentCoverLetter:
		data = app.CoverLetter
	default:
		return nil, validationFailure("kind", "attachment must be resume or cover_letter")
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// ResumeText extracts the plain text of a PDF resume for quick review.
func (s *ApplicationService) ResumeText(ctx context.Context, principal Principal, id int64) (string, error) {
	data, err := s.Attachment(ctx, principal, id, AttachmentResume)
	if err != nil {
		return "", err
	}

	text, err := s.extractText(data)
	if errors.Is(err, resume.ErrNotPDF) {
		return "", validationFailure("resume", "resume is not a PDF document")
	}
	return text, err
}

func validApplicationStatus(status persistence.ApplicationStatus) bool {
	switch status {
	case persistence.ApplicationSubmitted,
		persistence.ApplicationUnderReview,
		persistence.ApplicationInterviewScheduled,
		persistence.ApplicationAccepted,
		persistence.ApplicationRejected:
		return true
	}
	return false
}
