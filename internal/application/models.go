package application

import (
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID             int64
	Role               persistence.Role
	SessionID          string
	MustChangePassword bool
}

// IsAdmin reports whether the principal acts as an administrator.
func (p Principal) IsAdmin() bool { return p.Role == persistence.RoleAdmin }

// IsCandidate reports whether the principal acts as an applicant.
func (p Principal) IsCandidate() bool { return p.Role == persistence.RoleCandidate }

func requireAdmin(p Principal) error {
	if p.UserID == 0 || !p.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

func requireCandidate(p Principal) error {
	if p.UserID == 0 || !p.IsCandidate() {
		return ErrUnauthorized
	}
	return nil
}

// AuthenticateParams carries login credentials.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult is returned on successful login.
type AuthenticateResult struct {
	User    persistence.User
	Session persistence.Session
}

// RegisterParams carries the self-registration form.
type RegisterParams struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Mobile          string
}

// ResetPasswordParams redeems a reset token.
type ResetPasswordParams struct {
	Token           string
	NewPassword     string
	ConfirmPassword string
}

// ChangePasswordParams rotates the password of the signed-in user.
type ChangePasswordParams struct {
	Principal       Principal
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ProfileInput holds the self-editable profile fields.
type ProfileInput struct {
	FirstName      string
	LastName       string
	HomeAddress    string
	Age            int
	Location       string
	Country        string
	ProfilePicture []byte
}

// CandidateDetails is the administrator's consolidated view of one candidate.
type CandidateDetails struct {
	User        persistence.User
	Application *persistence.Application
	Interviews  []persistence.Interview
	Assignments []persistence.TestAssignment
	Documents   []persistence.Document
}

// SubmitApplicationParams carries the form and both attachments.
type SubmitApplicationParams struct {
	Principal   Principal
	Form        persistence.ApplicationForm
	Resume      []byte
	CoverLetter []byte
}

// UploadDocumentParams carries a candidate upload.
type UploadDocumentParams struct {
	Principal Principal
	FileName  string
	FileType  string
	Data      []byte
}

// SendMessageParams addresses a message by id or by email.
type SendMessageParams struct {
	Principal      Principal
	RecipientID    int64
	RecipientEmail string
	Body           string
}

// SubmitEditRequestParams carries a candidate's change request.
type SubmitEditRequestParams struct {
	Principal        Principal
	Reason           string
	RequestedChanges string
}

// ResolveEditRequestParams carries an administrator's decision.
type ResolveEditRequestParams struct {
	Principal Principal
	RequestID int64
	Status    persistence.EditRequestStatus
	Response  string
}

// CreateTestParams carries a new screening test.
type CreateTestParams struct {
	Principal       Principal
	Title           string
	Description     string
	Questions       persistence.QuestionSet
	DurationMinutes int
}

// AssignTestResult reports per-candidate assignment outcomes.
type AssignTestResult struct {
	Assigned []persistence.TestAssignment
	Skipped  map[int64]error
}

// ScheduleInterviewParams creates one interview per candidate with shared details.
type ScheduleInterviewParams struct {
	Principal    Principal
	CandidateIDs []int64
	Date         string
	Time         string
	Type         string
	Role         string
	DressCode    string
	Stage        string
}

// CreatePositionParams carries a new position.
type CreatePositionParams struct {
	Principal     Principal
	Title         string
	Description   string
	RequiredStaff int
}

// Overview is the administrator dashboard payload.
type Overview struct {
	Statistics       persistence.Statistics
	RecentActivities []persistence.Activity
	GeneratedAt      time.Time
}
