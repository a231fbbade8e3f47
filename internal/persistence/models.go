package persistence

import "time"

// Role distinguishes administrators from applicants.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCandidate Role = "candidate"
)

// UserStatus reports whether an account may sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User represents a portal account, either an administrator or a candidate.
type User struct {
	ID                  int64
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	Mobile              string
	Role                Role
	Status              UserStatus
	MustChangePassword  bool
	ProfileLocked       bool
	HomeAddress         string
	Age                 int
	Location            string
	Country             string
	ProfilePicture      []byte
	ResetToken          string
	ResetTokenExpiresAt *time.Time
	RegisteredAt        time.Time
	LastLoginAt         *time.Time
	LastActivityAt      *time.Time
	UpdatedAt           time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID             string
	UserID         int64
	Token          string
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
}

// ApplicationStatus tracks an application through review.
type ApplicationStatus string

const (
	ApplicationSubmitted          ApplicationStatus = "submitted"
	ApplicationUnderReview        ApplicationStatus = "under_review"
	ApplicationInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationAccepted           ApplicationStatus = "accepted"
	ApplicationRejected           ApplicationStatus = "rejected"
)

// Application is a candidate's submitted form together with its attachments.
// List queries leave Resume and CoverLetter empty.
type Application struct {
	ID             int64
	UserID         int64
	Form           ApplicationForm
	Status         ApplicationStatus
	SubmittedAt    time.Time
	ModifiedAt     time.Time
	Resume         []byte
	CoverLetter    []byte
	ApplicantName  string
	ApplicantEmail string
}

// Document is a file uploaded by a candidate. List queries leave Data empty.
type Document struct {
	ID         int64
	UserID     int64
	FileName   string
	FileType   string
	Data       []byte
	Size       int64
	UploadedAt time.Time
	Viewed     bool
}

// Message is a note exchanged between two users.
type Message struct {
	ID          int64
	SenderID    int64
	RecipientID int64
	Body        string
	SentAt      time.Time
	Read        bool
}

// EditRequestStatus tracks the resolution of an edit request.
type EditRequestStatus string

const (
	EditRequestPending  EditRequestStatus = "pending"
	EditRequestApproved EditRequestStatus = "approved"
	EditRequestRejected EditRequestStatus = "rejected"
)

// EditRequest is a candidate's request to change data they cannot edit directly.
type EditRequest struct {
	ID               int64
	UserID           int64
	Reason           string
	RequestedChanges string
	Status           EditRequestStatus
	Response         string
	CreatedAt        time.Time
	RespondedAt      *time.Time
}

// ScreeningTest is an admin-authored question set.
type ScreeningTest struct {
	ID              int64
	Title           string
	Description     string
	Questions       QuestionSet
	DurationMinutes int
	CreatedBy       int64
	CreatedAt       time.Time
}

// AssignmentStatus moves forward only: assigned, in_progress, completed.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
)

// TestAssignment links a screening test to a candidate.
// Responses are positional and align with the test's questions.
type TestAssignment struct {
	ID          int64
	TestID      int64
	CandidateID int64
	Status      AssignmentStatus
	AssignedAt  time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Score       *float64
	Responses   []string
	TestTitle   string
}

// Position is an open role with a staffing target.
type Position struct {
	ID            int64
	Title         string
	Description   string
	RequiredStaff int
	FilledStaff   int
	CreatedAt     time.Time
}

// InterviewStatus tracks an interview slot.
type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewPostponed   InterviewStatus = "postponed"
	InterviewRescheduled InterviewStatus = "rescheduled"
)

// Interview is a single candidate's interview slot. Date is YYYY-MM-DD and Time is HH:MM.
type Interview struct {
	ID                int64
	CandidateID       int64
	Date              string
	Time              string
	Type              string
	Role              string
	DressCode         string
	Stage             string
	Status            InterviewStatus
	CandidateResponse string
	CandidateNote     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Activity is an append-only audit entry.
type Activity struct {
	ID        int64
	Type      string
	Details   string
	UserID    *int64
	CreatedAt time.Time
}

// StatusCount pairs a status label with the number of rows carrying it.
type StatusCount struct {
	Status string
	Count  int
}

// DailyCount pairs a YYYY-MM-DD day with a count.
type DailyCount struct {
	Day   string
	Count int
}

// Statistics aggregates the figures shown on the administrator overview.
type Statistics struct {
	TotalCandidates     int
	OpenApplications    int
	ScheduledInterviews int
	FilledPositions     int
	RequiredPositions   int
	ApplicationsByState []StatusCount
	InterviewsByState   []StatusCount
	LoginsPerDay        []DailyCount
	TotalMessages       int
	UnreadMessages      int
	TotalDocuments      int
	UnviewedDocuments   int
}
