package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type accountService interface {
	GetProfile(ctx context.Context, principal application.Principal) (persistence.User, error)
	UpdateProfile(ctx context.Context, principal application.Principal, input application.ProfileInput) (persistence.User, error)
	ListCandidates(ctx context.Context, principal application.Principal, search string) ([]persistence.User, error)
	GetCandidateDetails(ctx context.Context, principal application.Principal, candidateID int64) (application.CandidateDetails, error)
	SetCandidateStatus(ctx context.Context, principal application.Principal, candidateID int64, status persistence.UserStatus) (persistence.User, error)
	SetProfileLock(ctx context.Context, principal application.Principal, candidateID int64, locked bool) (persistence.User, error)
}

// AccountHandler serves the signed-in user's profile and the administrator's candidate views.
type AccountHandler struct {
	service   accountService
	responder responder
	logger    *slog.Logger
}

func NewAccountHandler(service accountService, logger *slog.Logger) *AccountHandler {
	base := defaultLogger(logger)
	return &AccountHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.service.GetProfile(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), principal, application.ProfileInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		HomeAddress:    req.HomeAddress,
		Age:            req.Age,
		Location:       req.Location,
		Country:        req.Country,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "AccountHandler", "UpdateProfile").InfoContext(r.Context(), "profile updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

// ListCandidates handles GET /admin/candidates?search=.
func (h *AccountHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	users, err := h.service.ListCandidates(r.Context(), principal, r.URL.Query().Get("search"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listUsersResponse{Users: toUserDTOs(users)})
}

func (h *AccountHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	details, err := h.service.GetCandidateDetails(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := candidateDetailsResponse{
		User:        toUserDTO(details.User),
		Interviews:  toInterviewDTOs(details.Interviews),
		Assignments: toAssignmentDTOs(details.Assignments),
		Documents:   toDocumentDTOs(details.Documents),
	}
	if details.Application != nil {
		app := toApplicationDTO(*details.Application)
		resp.Application = &app
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *AccountHandler) SetCandidateStatus(w http.ResponseWriter, r *http.Request) {
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
	user, err := h.service.SetCandidateStatus(r.Context(), principal, id, persistence.UserStatus(req.Status))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

func (h *AccountHandler) SetProfileLock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req lockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.service.SetProfileLock(r.Context(), principal, id, req.Locked)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

type profileRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	HomeAddress    string `json:"home_address"`
	Age            int    `json:"age"`
	Location       string `json:"location"`
	Country        string `json:"country"`
	ProfilePicture []byte `json:"profile_picture"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

type listUsersResponse struct {
	Users []userDTO `json:"users"`
}

type candidateDetailsResponse struct {
	User        userDTO         `json:"user"`
	Application *applicationDTO `json:"application,omitempty"`
	Interviews  []interviewDTO  `json:"interviews"`
	Assignments []assignmentDTO `json:"test_assignments"`
	Documents   []documentDTO   `json:"documents"`
}
