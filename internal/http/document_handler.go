package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type documentService interface {
	Upload(ctx context.Context, params application.UploadDocumentParams) (persistence.Document, error)
	ListOwn(ctx context.Context, principal application.Principal) ([]persistence.Document, error)
	DownloadOwn(ctx context.Context, principal application.Principal, id int64) (persistence.Document, error)
	DeleteOwn(ctx context.Context, principal application.Principal, id int64) error
	ListAll(ctx context.Context, principal application.Principal) ([]persistence.Document, error)
	Download(ctx context.Context, principal application.Principal, id int64) (persistence.Document, error)
}

type DocumentHandler struct {
	service   documentService
	maxUpload int64
	responder responder
	logger    *slog.Logger
}

func NewDocumentHandler(service documentService, maxUpload int64, logger *slog.Logger) *DocumentHandler {
	base := defaultLogger(logger)
	if maxUpload <= 0 {
		maxUpload = application.DefaultMaxUploadBytes
	}
	return &DocumentHandler{service: service, maxUpload: maxUpload, responder: newResponder(base), logger: base}
}

// Upload handles POST /me/documents with a multipart "file" part and a "file_type" field.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := parseUpload(w, r, h.maxUpload, 1); err != nil {
		h.responder.writeUploadError(w, r, err)
		return
	}
	data, header, err := formFile(r, "file")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	var name string
	if header != nil {
		name = header.Filename
	}

	doc, err := h.service.Upload(r.Context(), application.UploadDocumentParams{
		Principal: principal,
		FileName:  name,
		FileType:  r.FormValue("file_type"),
		Data:      data,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "DocumentHandler", "Upload", "document_id", doc.ID).InfoContext(r.Context(), "document stored")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, documentResponse{Document: toDocumentDTOs([]persistence.Document{doc})[0]})
}

func (h *DocumentHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	docs, err := h.service.ListOwn(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDocumentsResponse{Documents: toDocumentDTOs(docs)})
}

func (h *DocumentHandler) DownloadOwn(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, h.service.DownloadOwn)
}

func (h *DocumentHandler) DeleteOwn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteOwn(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *DocumentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	docs, err := h.service.ListAll(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDocumentsResponse{Documents: toDocumentDTOs(docs)})
}

// Download handles GET /admin/documents/{id}/content and marks the document viewed.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, h.service.Download)
}

func (h *DocumentHandler) download(w http.ResponseWriter, r *http.Request, fetch func(context.Context, application.Principal, int64) (persistence.Document, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	doc, err := fetch(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeBinary(r.Context(), w, "", doc.FileName, doc.Data)
}

type documentResponse struct {
	Document documentDTO `json:"document"`
}

type listDocumentsResponse struct {
	Documents []documentDTO `json:"documents"`
}
