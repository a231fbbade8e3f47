package persistence

import (
	"context"
	"time"
)

// UserFilter narrows user listings. Search matches first name, last name or email.
type UserFilter struct {
	Role   Role
	Search string
}

// UserRepository stores portal accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByResetToken(ctx context.Context, token string) (User, error)
	RedeemResetToken(ctx context.Context, id int64, token, passwordHash string, at time.Time) error
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
	TouchUserActivity(ctx context.Context, id int64, at time.Time) error
}

// SessionRepository stores issued sessions keyed by token.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	RevokeUserSessions(ctx context.Context, userID int64, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	UserID int64
	Status ApplicationStatus
}

// ApplicationRepository stores candidate applications.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app Application) (Application, error)
	UpdateApplication(ctx context.Context, app Application) error
	GetApplication(ctx context.Context, id int64) (Application, error)
	GetLatestApplication(ctx context.Context, userID int64) (Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error)
}

// DocumentRepository stores uploaded candidate documents.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc Document) (Document, error)
	GetDocument(ctx context.Context, id int64) (Document, error)
	ListDocuments(ctx context.Context, userID int64) ([]Document, error)
	MarkDocumentViewed(ctx context.Context, id int64) error
	DeleteUserDocument(ctx context.Context, userID, id int64) error
}

// MessageRepository stores messages between users. A zero participant lists every message.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg Message) (Message, error)
	GetMessage(ctx context.Context, id int64) (Message, error)
	ListMessages(ctx context.Context, participantID int64) ([]Message, error)
	MarkMessageRead(ctx context.Context, id int64) error
	DeleteMessage(ctx context.Context, id int64) error
}

// EditRequestFilter narrows edit request listings.
type EditRequestFilter struct {
	UserID int64
	Status EditRequestStatus
}

// EditRequestRepository stores candidate edit requests.
type EditRequestRepository interface {
	CreateEditRequest(ctx context.Context, req EditRequest) (EditRequest, error)
	GetEditRequest(ctx context.Context, id int64) (EditRequest, error)
	ListEditRequests(ctx context.Context, filter EditRequestFilter) ([]EditRequest, error)
	UpdateEditRequest(ctx context.Context, req EditRequest) error
}

// AssignmentFilter narrows test assignment listings.
type AssignmentFilter struct {
	TestID      int64
	CandidateID int64
}

// ScreeningRepository stores screening tests and their assignments.
type ScreeningRepository interface {
	CreateTest(ctx context.Context, test ScreeningTest) (ScreeningTest, error)
	GetTest(ctx context.Context, id int64) (ScreeningTest, error)
	ListTests(ctx context.Context) ([]ScreeningTest, error)
	CreateAssignment(ctx context.Context, assignment TestAssignment) (TestAssignment, error)
	GetAssignment(ctx context.Context, testID, candidateID int64) (TestAssignment, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]TestAssignment, error)
	UpdateAssignment(ctx context.Context, assignment TestAssignment, from AssignmentStatus) error
}

// PositionRepository stores open positions.
type PositionRepository interface {
	CreatePosition(ctx context.Context, position Position) (Position, error)
	GetPosition(ctx context.Context, id int64) (Position, error)
	ListPositions(ctx context.Context) ([]Position, error)
	UpdatePosition(ctx context.Context, position Position) error
}

// InterviewRepository stores interview slots. CreateInterviews is atomic.
type InterviewRepository interface {
	CreateInterviews(ctx context.Context, interviews []Interview) ([]Interview, error)
	GetInterview(ctx context.Context, id int64) (Interview, error)
	ListInterviews(ctx context.Context, candidateID int64) ([]Interview, error)
	UpdateInterview(ctx context.Context, interview Interview) error
}

// ActivityRepository appends and reads audit entries, newest first.
type ActivityRepository interface {
	AppendActivity(ctx context.Context, activity Activity) error
	ListActivities(ctx context.Context, userID int64, limit int) ([]Activity, error)
}

// SettingsRepository stores key/value application settings.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
}

// StatisticsRepository computes dashboard aggregates.
type StatisticsRepository interface {
	Statistics(ctx context.Context, loginsSince time.Time) (Statistics, error)
}
