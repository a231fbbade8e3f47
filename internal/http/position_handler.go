package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type positionService interface {
	Create(ctx context.Context, params application.CreatePositionParams) (persistence.Position, error)
	List(ctx context.Context, principal application.Principal) ([]persistence.Position, error)
	UpdateFilled(ctx context.Context, principal application.Principal, id int64, filled int) (persistence.Position, error)
}

type PositionHandler struct {
	service   positionService
	responder responder
	logger    *slog.Logger
}

func NewPositionHandler(service positionService, logger *slog.Logger) *PositionHandler {
	base := defaultLogger(logger)
	return &PositionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PositionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req createPositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	position, err := h.service.Create(r.Context(), application.CreatePositionParams{
		Principal:     principal,
		Title:         req.Title,
		Description:   req.Description,
		RequiredStaff: req.RequiredStaff,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, positionResponse{Position: toPositionDTO(position)})
}

func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	positions, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	out := make([]positionDTO, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPositionDTO(p))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPositionsResponse{Positions: out})
}

// UpdateFilled handles PUT /admin/positions/{id}/filled.
func (h *PositionHandler) UpdateFilled(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req filledRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	position, err := h.service.UpdateFilled(r.Context(), principal, id, req.FilledStaff)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, positionResponse{Position: toPositionDTO(position)})
}

type createPositionRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	RequiredStaff int    `json:"required_staff"`
}

type filledRequest struct {
	FilledStaff int `json:"filled_staff"`
}

type positionResponse struct {
	Position positionDTO `json:"position"`
}

type listPositionsResponse struct {
	Positions []positionDTO `json:"positions"`
}
