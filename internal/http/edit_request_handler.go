package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type editRequestService interface {
	Submit(ctx context.Context, params application.SubmitEditRequestParams) (persistence.EditRequest, error)
	ListOwn(ctx context.Context, principal application.Principal) ([]persistence.EditRequest, error)
	List(ctx context.Context, principal application.Principal, status persistence.EditRequestStatus) ([]persistence.EditRequest, error)
	Resolve(ctx context.Context, params application.ResolveEditRequestParams) (persistence.EditRequest, error)
}

// EditRequestHandler serves requests to change data candidates cannot edit themselves.
type EditRequestHandler struct {
	service   editRequestService
	responder responder
	logger    *slog.Logger
}

func NewEditRequestHandler(service editRequestService, logger *slog.Logger) *EditRequestHandler {
	base := defaultLogger(logger)
	return &EditRequestHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EditRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req editRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.service.Submit(r.Context(), application.SubmitEditRequestParams{
		Principal:        principal,
		Reason:           req.Reason,
		RequestedChanges: req.RequestedChanges,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, editRequestResponse{EditRequest: toEditRequestDTO(created)})
}

func (h *EditRequestHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	reqs, err := h.service.ListOwn(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEditRequestsResponse{EditRequests: toEditRequestDTOs(reqs)})
}

// List handles GET /admin/edit-requests?status=pending.
func (h *EditRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	status := persistence.EditRequestStatus(r.URL.Query().Get("status"))
	reqs, err := h.service.List(r.Context(), principal, status)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEditRequestsResponse{EditRequests: toEditRequestDTOs(reqs)})
}

// Resolve handles PUT /admin/edit-requests/{id}.
func (h *EditRequestHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req resolveEditRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	resolved, err := h.service.Resolve(r.Context(), application.ResolveEditRequestParams{
		Principal: principal,
		RequestID: id,
		Status:    persistence.EditRequestStatus(req.Status),
		Response:  req.Response,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, editRequestResponse{EditRequest: toEditRequestDTO(resolved)})
}

type editRequestRequest struct {
	Reason           string `json:"reason"`
	RequestedChanges string `json:"requested_changes"`
}

type resolveEditRequestRequest struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

type editRequestResponse struct {
	EditRequest editRequestDTO `json:"edit_request"`
}

type listEditRequestsResponse struct {
	EditRequests []editRequestDTO `json:"edit_requests"`
}
