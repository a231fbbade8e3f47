package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type applicationService interface {
	Submit(ctx context.Context, params application.SubmitApplicationParams) (persistence.Application, error)
	GetCurrent(ctx context.Context, principal application.Principal) (persistence.Application, error)
	List(ctx context.Context, principal application.Principal, status persistence.ApplicationStatus) ([]persistence.Application, error)
	Get(ctx context.Context, principal application.Principal, id int64) (persistence.Application, error)
	UpdateStatus(ctx context.Context, principal application.Principal, id int64, status persistence.ApplicationStatus) (persistence.Application, error)
	Attachment(ctx context.Context, principal application.Principal, id int64, kind application.AttachmentKind) ([]byte, error)
	ResumeText(ctx context.Context, principal application.Principal, id int64) (string, error)
}

// ApplicationHandler serves application intake for candidates and review for administrators.
type ApplicationHandler struct {
	service   applicationService
	maxUpload int64
	responder responder
	logger    *slog.Logger
}

func NewApplicationHandler(service applicationService, maxUpload int64, logger *slog.Logger) *ApplicationHandler {
	base := defaultLogger(logger)
	if maxUpload <= 0 {
		maxUpload = application.DefaultMaxUploadBytes
	}
	return &ApplicationHandler{service: service, maxUpload: maxUpload, responder: newResponder(base), logger: base}
}

// Submit handles POST /me/application. The body is multipart: a "form" part holding
// the JSON application form plus "resume" and "cover_letter" files.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := parseUpload(w, r, h.maxUpload, 2); err != nil {
		h.responder.writeUploadError(w, r, err)
		return
	}

	var form persistence.ApplicationForm
	if err := json.Unmarshal([]byte(r.FormValue("form")), &form); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	resumeData, _, err := formFile(r, "resume")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	coverLetter, _, err := formFile(r, "cover_letter")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	app, err := h.service.Submit(r.Context(), application.SubmitApplicationParams{
		Principal:   principal,
		Form:        form,
		Resume:      resumeData,
		CoverLetter: coverLetter,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "ApplicationHandler", "Submit", "application_id", app.ID).InfoContext(r.Context(), "application received")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, applicationResponse{Application: toApplicationDTO(app)})
}

func (h *ApplicationHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	app, err := h.service.GetCurrent(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationResponse{Application: toApplicationDTO(app)})
}

// List handles GET /admin/applications?status=.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	status := persistence.ApplicationStatus(r.URL.Query().Get("status"))
	apps, err := h.service.List(r.Context(), principal, status)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listApplicationsResponse{Applications: toApplicationDTOs(apps)})
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	app, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationResponse{Application: toApplicationDTO(app)})
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	app, err := h.service.UpdateStatus(r.Context(), principal, id, persistence.ApplicationStatus(req.Status))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationResponse{Application: toApplicationDTO(app)})
}

// Resume handles GET /admin/applications/{id}/resume.
func (h *ApplicationHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.attachment(w, r, application.AttachmentResume)
}

// CoverLetter handles GET /admin/applications/{id}/cover-letter.
func (h *ApplicationHandler) CoverLetter(w http.ResponseWriter, r *http.Request) {
	h.attachment(w, r, application.AttachmentCoverLetter)
}

func (h *ApplicationHandler) attachment(w http.ResponseWriter, r *http.Request, kind application.AttachmentKind) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	data, err := h.service.Attachment(r.Context(), principal, id, kind)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeBinary(r.Context(), w, "", string(kind)+"-"+strconv.FormatInt(id, 10), data)
}

// ResumeText handles GET /admin/applications/{id}/resume/text.
func (h *ApplicationHandler) ResumeText(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	text, err := h.service.ResumeText(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resumeTextResponse{ApplicationID: id, Text: text})
}

type applicationResponse struct {
	Application applicationDTO `json:"application"`
}

type listApplicationsResponse struct {
	Applications []applicationDTO `json:"applications"`
}

type resumeTextResponse struct {
	ApplicationID int64  `json:"application_id"`
	Text          string `json:"text"`
}
