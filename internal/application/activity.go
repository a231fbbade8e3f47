package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

// Activity types written to the audit log.
const (
	ActivityLogin               = "login"
	ActivityRegistration        = "registration"
	ActivityPasswordReset       = "password_reset"
	ActivityPasswordChanged     = "password_changed"
	ActivityApplicationSubmit   = "application_submitted"
	ActivityApplicationStatus   = "application_status_changed"
	ActivityInterviewScheduled  = "interview_scheduled"
	ActivityTestAssigned        = "test_assigned"
	ActivityTestCompleted       = "test_completed"
	ActivityEditRequestResolved = "edit_request_resolved"
	ActivityDocumentUploaded    = "document_uploaded"
)

// activityRecorder appends audit entries. A failed append is logged and never fails the caller.
type activityRecorder struct {
	repo persistence.ActivityRepository
	now  func() time.Time
}

func (r activityRecorder) record(ctx context.Context, logger *slog.Logger, kind, details string, userID int64) {
	if r.repo == nil {
		return
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	entry := persistence.Activity{Type: kind, Details: details, CreatedAt: now()}
	if userID != 0 {
		entry.UserID = &userID
	}
	if err := r.repo.AppendActivity(ctx, entry); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to record activity", "activity_type", kind, "error", err)
	}
}
