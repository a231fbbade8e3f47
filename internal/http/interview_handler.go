package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type interviewService interface {
	Schedule(ctx context.Context, params application.ScheduleInterviewParams) ([]persistence.Interview, error)
	List(ctx context.Context, principal application.Principal) ([]persistence.Interview, error)
	ListOwn(ctx context.Context, principal application.Principal) ([]persistence.Interview, error)
	UpdateStatus(ctx context.Context, principal application.Principal, id int64, status persistence.InterviewStatus) (persistence.Interview, error)
	Reschedule(ctx context.Context, principal application.Principal, id int64, date, clock string) (persistence.Interview, error)
	Respond(ctx context.Context, principal application.Principal, id int64, response, note string) (persistence.Interview, error)
}

type InterviewHandler struct {
	service   interviewService
	responder responder
	logger    *slog.Logger
}

func NewInterviewHandler(service interviewService, logger *slog.Logger) *InterviewHandler {
	base := defaultLogger(logger)
	return &InterviewHandler{service: service, responder: newResponder(base), logger: base}
}

// Schedule handles POST /admin/interviews and creates one interview per listed candidate.
func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req scheduleInterviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.service.Schedule(r.Context(), application.ScheduleInterviewParams{
		Principal:    principal,
		CandidateIDs: req.CandidateIDs,
		Date:         req.Date,
		Time:         req.Time,
		Type:         req.Type,
		Role:         req.Role,
		DressCode:    req.DressCode,
		Stage:        req.Stage,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "InterviewHandler", "Schedule", "result_count", len(created)).InfoContext(r.Context(), "interviews scheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, listInterviewsResponse{Interviews: toInterviewDTOs(created)})
}

func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listInterviewsResponse{Interviews: toInterviewDTOs(items)})
}

func (h *InterviewHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.service.ListOwn(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listInterviewsResponse{Interviews: toInterviewDTOs(items)})
}

func (h *InterviewHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	iv, err := h.service.UpdateStatus(r.Context(), principal, id, persistence.InterviewStatus(req.Status))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, interviewResponse{Interview: toInterviewDTO(iv)})
}

// Reschedule handles PUT /admin/interviews/{id}/schedule.
func (h *InterviewHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req rescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	iv, err := h.service.Reschedule(r.Context(), principal, id, req.Date, req.Time)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, interviewResponse{Interview: toInterviewDTO(iv)})
}

// Respond handles PUT /me/interviews/{id}/response.
func (h *InterviewHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req interviewResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	iv, err := h.service.Respond(r.Context(), principal, id, req.Response, req.Note)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, interviewResponse{Interview: toInterviewDTO(iv)})
}

type scheduleInterviewRequest struct {
	CandidateIDs []int64 `json:"candidate_ids"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Type         string  `json:"type"`
	Role         string  `json:"role"`
	DressCode    string  `json:"dress_code"`
	Stage        string  `json:"stage"`
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type interviewResponseRequest struct {
	Response string `json:"response"`
	Note     string `json:"note"`
}

type interviewResponse struct {
	Interview interviewDTO `json:"interview"`
}

type listInterviewsResponse struct {
	Interviews []interviewDTO `json:"interviews"`
}
