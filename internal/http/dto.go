package http

import (
	"time"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

type userDTO struct {
	ID                 int64   `json:"id"`
	Email              string  `json:"email"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Mobile             string  `json:"mobile"`
	Role               string  `json:"role"`
	Status             string  `json:"status"`
	MustChangePassword bool    `json:"must_change_password"`
	ProfileLocked      bool    `json:"profile_locked"`
	HomeAddress        string  `json:"home_address,omitempty"`
	Age                int     `json:"age,omitempty"`
	Location           string  `json:"location,omitempty"`
	Country            string  `json:"country,omitempty"`
	ProfilePicture     []byte  `json:"profile_picture,omitempty"`
	RegisteredAt       string  `json:"registered_at"`
	LastLoginAt        *string `json:"last_login_at,omitempty"`
	LastActivityAt     *string `json:"last_activity_at,omitempty"`
}

func toUserDTO(user persistence.User) userDTO {
	return userDTO{
		ID:                 user.ID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Mobile:             user.Mobile,
		Role:               string(user.Role),
		Status:             string(user.Status),
		MustChangePassword: user.MustChangePassword,
		ProfileLocked:      user.ProfileLocked,
		HomeAddress:        user.HomeAddress,
		Age:                user.Age,
		Location:           user.Location,
		Country:            user.Country,
		ProfilePicture:     user.ProfilePicture,
		RegisteredAt:       formatTime(user.RegisteredAt),
		LastLoginAt:        formatTimePtr(user.LastLoginAt),
		LastActivityAt:     formatTimePtr(user.LastActivityAt),
	}
}

func toUserDTOs(users []persistence.User) []userDTO {
	out := make([]userDTO, 0, len(users))
	for _, user := range users {
		// list views never carry pictures
		user.ProfilePicture = nil
		out = append(out, toUserDTO(user))
	}
	return out
}

type applicationDTO struct {
	ID             int64                       `json:"id"`
	UserID         int64                       `json:"user_id"`
	Status         string                      `json:"status"`
	Form           persistence.ApplicationForm `json:"form"`
	SubmittedAt    string                      `json:"submitted_at"`
	ModifiedAt     string                      `json:"modified_at"`
	ApplicantName  string                      `json:"applicant_name,omitempty"`
	ApplicantEmail string                      `json:"applicant_email,omitempty"`
}

func toApplicationDTO(app persistence.Application) applicationDTO {
	return applicationDTO{
		ID:             app.ID,
		UserID:         app.UserID,
		Status:         string(app.Status),
		Form:           app.Form,
		SubmittedAt:    formatTime(app.SubmittedAt),
		ModifiedAt:     formatTime(app.ModifiedAt),
		ApplicantName:  app.ApplicantName,
		ApplicantEmail: app.ApplicantEmail,
	}
}

func toApplicationDTOs(apps []persistence.Application) []applicationDTO {
	out := make([]applicationDTO, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationDTO(app))
	}
	return out
}

type documentDTO struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploaded_at"`
	Viewed     bool   `json:"viewed"`
}

func toDocumentDTOs(docs []persistence.Document) []documentDTO {
	out := make([]documentDTO, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentDTO{
			ID:         doc.ID,
			UserID:     doc.UserID,
			FileName:   doc.FileName,
			FileType:   doc.FileType,
			Size:       doc.Size,
			UploadedAt: formatTime(doc.UploadedAt),
			Viewed:     doc.Viewed,
		})
	}
	return out
}

type messageDTO struct {
	ID          int64  `json:"id"`
	SenderID    int64  `json:"sender_id"`
	RecipientID int64  `json:"recipient_id"`
	Body        string `json:"body"`
	SentAt      string `json:"sent_at"`
	Read        bool   `json:"read"`
}

func toMessageDTO(msg persistence.Message) messageDTO {
	return messageDTO{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Body:        msg.Body,
		SentAt:      formatTime(msg.SentAt),
		Read:        msg.Read,
	}
}

func toMessageDTOs(msgs []persistence.Message) []messageDTO {
	out := make([]messageDTO, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, toMessageDTO(msg))
	}
	return out
}

type editRequestDTO struct {
	ID               int64   `json:"id"`
	UserID           int64   `json:"user_id"`
	Reason           string  `json:"reason"`
	RequestedChanges string  `json:"requested_changes"`
	Status           string  `json:"status"`
	Response         string  `json:"response,omitempty"`
	CreatedAt        string  `json:"created_at"`
	RespondedAt      *string `json:"responded_at,omitempty"`
}

func toEditRequestDTO(req persistence.EditRequest) editRequestDTO {
	return editRequestDTO{
		ID:               req.ID,
		UserID:           req.UserID,
		Reason:           req.Reason,
		RequestedChanges: req.RequestedChanges,
		Status:           string(req.Status),
		Response:         req.Response,
		CreatedAt:        formatTime(req.CreatedAt),
		RespondedAt:      formatTimePtr(req.RespondedAt),
	}
}

func toEditRequestDTOs(reqs []persistence.EditRequest) []editRequestDTO {
	out := make([]editRequestDTO, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toEditRequestDTO(req))
	}
	return out
}

type testDTO struct {
	ID              int64                   `json:"id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description,omitempty"`
	Questions       persistence.QuestionSet `json:"questions"`
	DurationMinutes int                     `json:"duration_minutes"`
	CreatedAt       string                  `json:"created_at"`
}

func toTestDTO(test persistence.ScreeningTest) testDTO {
	return testDTO{
		ID:              test.ID,
		Title:           test.Title,
		Description:     test.Description,
		Questions:       test.Questions,
		DurationMinutes: test.DurationMinutes,
		CreatedAt:       formatTime(test.CreatedAt),
	}
}

type assignmentDTO struct {
	ID          int64    `json:"id"`
	TestID      int64    `json:"test_id"`
	TestTitle   string   `json:"test_title,omitempty"`
	CandidateID int64    `json:"candidate_id"`
	Status      string   `json:"status"`
	AssignedAt  string   `json:"assigned_at"`
	StartedAt   *string  `json:"started_at,omitempty"`
	CompletedAt *string  `json:"completed_at,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Responses   []string `json:"responses,omitempty"`
}

func toAssignmentDTO(a persistence.TestAssignment) assignmentDTO {
	return assignmentDTO{
		ID:          a.ID,
		TestID:      a.TestID,
		TestTitle:   a.TestTitle,
		CandidateID: a.CandidateID,
		Status:      string(a.Status),
		AssignedAt:  formatTime(a.AssignedAt),
		StartedAt:   formatTimePtr(a.StartedAt),
		CompletedAt: formatTimePtr(a.CompletedAt),
		Score:       a.Score,
		Responses:   a.Responses,
	}
}

func toAssignmentDTOs(items []persistence.TestAssignment) []assignmentDTO {
	out := make([]assignmentDTO, 0, len(items))
	for _, a := range items {
		out = append(out, toAssignmentDTO(a))
	}
	return out
}

type interviewDTO struct {
	ID                int64  `json:"id"`
	CandidateID       int64  `json:"candidate_id"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	Type              string `json:"type"`
	Role              string `json:"role,omitempty"`
	DressCode         string `json:"dress_code,omitempty"`
	Stage             string `json:"stage"`
	Status            string `json:"status"`
	CandidateResponse string `json:"candidate_response,omitempty"`
	CandidateNote     string `json:"candidate_note,omitempty"`
	UpdatedAt         string `json:"updated_at"`
}

func toInterviewDTO(iv persistence.Interview) interviewDTO {
	return interviewDTO{
		ID:                iv.ID,
		CandidateID:       iv.CandidateID,
		Date:              iv.Date,
		Time:              iv.Time,
		Type:              iv.Type,
		Role:              iv.Role,
		DressCode:         iv.DressCode,
		Stage:             iv.Stage,
		Status:            string(iv.Status),
		CandidateResponse: iv.CandidateResponse,
		CandidateNote:     iv.CandidateNote,
		UpdatedAt:         formatTime(iv.UpdatedAt),
	}
}

func toInterviewDTOs(items []persistence.Interview) []interviewDTO {
	out := make([]interviewDTO, 0, len(items))
	for _, iv := range items {
		out = append(out, toInterviewDTO(iv))
	}
	return out
}

type positionDTO struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	RequiredStaff int    `json:"required_staff"`
	FilledStaff   int    `json:"filled_staff"`
	CreatedAt     string `json:"created_at"`
}

func toPositionDTO(p persistence.Position) positionDTO {
	return positionDTO{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		RequiredStaff: p.RequiredStaff,
		FilledStaff:   p.FilledStaff,
		CreatedAt:     formatTime(p.CreatedAt),
	}
}

type activityDTO struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Details   string `json:"details"`
	UserID    *int64 `json:"user_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toActivityDTOs(items []persistence.Activity) []activityDTO {
	out := make([]activityDTO, 0, len(items))
	for _, a := range items {
		out = append(out, activityDTO{ID: a.ID, Type: a.Type, Details: a.Details, UserID: a.UserID, CreatedAt: formatTime(a.CreatedAt)})
	}
	return out
}

type statusCountDTO struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type dailyCountDTO struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type overviewDTO struct {
	TotalCandidates     int              `json:"total_candidates"`
	OpenApplications    int              `json:"open_applications"`
	ScheduledInterviews int              `json:"scheduled_interviews"`
	FilledPositions     int              `json:"filled_positions"`
	RequiredPositions   int              `json:"required_positions"`
	ApplicationsByState []statusCountDTO `json:"applications_by_status"`
	InterviewsByState   []statusCountDTO `json:"interviews_by_status"`
	LoginsPerDay        []dailyCountDTO  `json:"logins_per_day"`
	TotalMessages       int              `json:"total_messages"`
	UnreadMessages      int              `json:"unread_messages"`
	TotalDocuments      int              `json:"total_documents"`
	UnviewedDocuments   int              `json:"unviewed_documents"`
	RecentActivities    []activityDTO    `json:"recent_activities"`
	GeneratedAt         string           `json:"generated_at"`
}

func toOverviewDTO(o application.Overview) overviewDTO {
	counts := func(in []persistence.StatusCount) []statusCountDTO {
		out := make([]statusCountDTO, 0, len(in))
		for _, c := range in {
			out = append(out, statusCountDTO{Status: c.Status, Count: c.Count})
		}
		return out
	}
	days := make([]dailyCountDTO, 0, len(o.Statistics.LoginsPerDay))
	for _, d := range o.Statistics.LoginsPerDay {
		days = append(days, dailyCountDTO{Day: d.Day, Count: d.Count})
	}

	stats := o.Statistics
	return overviewDTO{
		TotalCandidates:     stats.TotalCandidates,
		OpenApplications:    stats.OpenApplications,
		ScheduledInterviews: stats.ScheduledInterviews,
		FilledPositions:     stats.FilledPositions,
		RequiredPositions:   stats.RequiredPositions,
		ApplicationsByState: counts(stats.ApplicationsByState),
		InterviewsByState:   counts(stats.InterviewsByState),
		LoginsPerDay:        days,
		TotalMessages:       stats.TotalMessages,
		UnreadMessages:      stats.UnreadMessages,
		TotalDocuments:      stats.TotalDocuments,
		UnviewedDocuments:   stats.UnviewedDocuments,
		RecentActivities:    toActivityDTOs(o.RecentActivities),
		GeneratedAt:         formatTime(o.GeneratedAt),
	}
}
