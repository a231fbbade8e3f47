package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type screeningService interface {
	CreateTest(ctx context.Context, params application.CreateTestParams) (persistence.ScreeningTest, error)
	ListTests(ctx context.Context, principal application.Principal) ([]persistence.ScreeningTest, error)
	GetTest(ctx context.Context, principal application.Principal, id int64) (persistence.ScreeningTest, error)
	Assign(ctx context.Context, principal application.Principal, testID int64, candidateIDs []int64) (application.AssignTestResult, error)
	ListTestAssignments(ctx context.Context, principal application.Principal, testID int64) ([]persistence.TestAssignment, error)
	ListAssignments(ctx context.Context, principal application.Principal) ([]persistence.TestAssignment, error)
	GetAssignedTest(ctx context.Context, principal application.Principal, testID int64) (persistence.ScreeningTest, persistence.TestAssignment, error)
	Start(ctx context.Context, principal application.Principal, testID int64) (persistence.TestAssignment, error)
	Submit(ctx context.Context, principal application.Principal, testID int64, responses []string) (persistence.TestAssignment, error)
}

// ScreeningHandler serves test authoring and assignment for administrators and test taking for candidates.
type ScreeningHandler struct {
	service   screeningService
	responder responder
	logger    *slog.Logger
}

func NewScreeningHandler(service screeningService, logger *slog.Logger) *ScreeningHandler {
	base := defaultLogger(logger)
	return &ScreeningHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScreeningHandler) CreateTest(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req createTestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	test, err := h.service.CreateTest(r.Context(), application.CreateTestParams{
		Principal:       principal,
		Title:           req.Title,
		Description:     req.Description,
		Questions:       req.Questions,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "ScreeningHandler", "CreateTest", "test_id", test.ID).InfoContext(r.Context(), "screening test created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, testResponse{Test: toTestDTO(test)})
}

func (h *ScreeningHandler) ListTests(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	tests, err := h.service.ListTests(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	out := make([]testDTO, 0, len(tests))
	for _, test := range tests {
		out = append(out, toTestDTO(test))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTestsResponse{Tests: out})
}

func (h *ScreeningHandler) GetTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	test, err := h.service.GetTest(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, testResponse{Test: toTestDTO(test)})
}

// Assign handles POST /admin/tests/{id}/assignments. Candidates that could not be
// assigned are reported per id with the reason.
func (h *ScreeningHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req assignTestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.Assign(r.Context(), principal, id, req.CandidateIDs)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	skipped := make(map[string]string, len(result.Skipped))
	for candidateID, reason := range result.Skipped {
		skipped[strconv.FormatInt(candidateID, 10)] = application.ErrorKind(reason)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignTestResponse{
		Assigned: toAssignmentDTOs(result.Assigned),
		Skipped:  skipped,
	})
}

func (h *ScreeningHandler) ListTestAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.service.ListTestAssignments(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAssignmentsResponse{Assignments: toAssignmentDTOs(items)})
}

// ListAssignments handles GET /me/tests.
func (h *ScreeningHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.service.ListAssignments(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAssignmentsResponse{Assignments: toAssignmentDTOs(items)})
}

// GetAssignedTest handles GET /me/tests/{id}; correct answers are never included.
func (h *ScreeningHandler) GetAssignedTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	test, assignment, err := h.service.GetAssignedTest(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignedTestResponse{
		Test:       toTestDTO(test),
		Assignment: toAssignmentDTO(assignment),
	})
}

func (h *ScreeningHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	assignment, err := h.service.Start(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *ScreeningHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req submitTestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	assignment, err := h.service.Submit(r.Context(), principal, id, req.Responses)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

type createTestRequest struct {
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Questions       persistence.QuestionSet `json:"questions"`
	DurationMinutes int                     `json:"duration_minutes"`
}

type assignTestRequest struct {
	CandidateIDs []int64 `json:"candidate_ids"`
}

type submitTestRequest struct {
	Responses []string `json:"responses"`
}

type testResponse struct {
	Test testDTO `json:"test"`
}

type listTestsResponse struct {
	Tests []testDTO `json:"tests"`
}

type assignTestResponse struct {
	Assigned []assignmentDTO   `json:"assigned"`
	Skipped  map[string]string `json:"skipped,omitempty"`
}

type assignmentResponse struct {
	Assignment assignmentDTO `json:"assignment"`
}

type listAssignmentsResponse struct {
	Assignments []assignmentDTO `json:"assignments"`
}

type assignedTestResponse struct {
	Test       testDTO       `json:"test"`
	Assignment assignmentDTO `json:"assignment"`
}
