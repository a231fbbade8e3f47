package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type messageService interface {
	Send(ctx context.Context, params application.SendMessageParams) (persistence.Message, error)
	List(ctx context.Context, principal application.Principal) ([]persistence.Message, error)
	ListAll(ctx context.Context, principal application.Principal) ([]persistence.Message, error)
	MarkRead(ctx context.Context, principal application.Principal, id int64) error
	Delete(ctx context.Context, principal application.Principal, id int64) error
}

type MessageHandler struct {
	service   messageService
	responder responder
	logger    *slog.Logger
}

func NewMessageHandler(service messageService, logger *slog.Logger) *MessageHandler {
	base := defaultLogger(logger)
	return &MessageHandler{service: service, responder: newResponder(base), logger: base}
}

// Send handles POST /me/messages and POST /admin/messages.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	msg, err := h.service.Send(r.Context(), application.SendMessageParams{
		Principal:      principal,
		RecipientID:    req.RecipientID,
		RecipientEmail: req.RecipientEmail,
		Body:           req.Body,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, messageResponse{Message: toMessageDTO(msg)})
}

// List returns the principal's sent and received messages.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	msgs, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMessagesResponse{Messages: toMessageDTOs(msgs)})
}

// ListAll handles GET /admin/messages.
func (h *MessageHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	msgs, err := h.service.ListAll(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMessagesResponse{Messages: toMessageDTOs(msgs)})
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.MarkRead(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type sendMessageRequest struct {
	RecipientID    int64  `json:"recipient_id"`
	RecipientEmail string `json:"recipient_email"`
	Body           string `json:"body"`
}

type messageResponse struct {
	Message messageDTO `json:"message"`
}

type listMessagesResponse struct {
	Messages []messageDTO `json:"messages"`
}
