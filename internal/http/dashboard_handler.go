package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/persistence"
)

type dashboardService interface {
	Overview(ctx context.Context, principal application.Principal) (application.Overview, error)
	ActivityLog(ctx context.Context, principal application.Principal, userID int64, limit int) ([]persistence.Activity, error)
}

type settingsService interface {
	Get(ctx context.Context, principal application.Principal, key string) (string, error)
	Put(ctx context.Context, principal application.Principal, key, value string) error
}

// DashboardHandler serves the administrator overview, the activity log and settings.
type DashboardHandler struct {
	dashboard dashboardService
	settings  settingsService
	responder responder
	logger    *slog.Logger
}

func NewDashboardHandler(dashboard dashboardService, settings settingsService, logger *slog.Logger) *DashboardHandler {
	base := defaultLogger(logger)
	return &DashboardHandler{dashboard: dashboard, settings: settings, responder: newResponder(base), logger: base}
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	overview, err := h.dashboard.Overview(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toOverviewDTO(overview))
}

// Activities handles GET /admin/activities?user_id=&limit=.
func (h *DashboardHandler) Activities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var userID int64
	if raw := query.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
			return
		}
		userID = id
	}
	var limit int
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		limit = n
	}

	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.dashboard.ActivityLog(r.Context(), principal, userID, limit)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listActivitiesResponse{Activities: toActivityDTOs(items)})
}

func (h *DashboardHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	key := r.PathValue("key")
	value, err := h.settings.Get(r.Context(), principal, key)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingDTO{Key: key, Value: value})
}

func (h *DashboardHandler) PutSetting(w http.ResponseWriter, r *http.Request) {
	var req settingDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	key := r.PathValue("key")
	if err := h.settings.Put(r.Context(), principal, key, req.Value); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingDTO{Key: key, Value: req.Value})
}

type listActivitiesResponse struct {
	Activities []activityDTO `json:"activities"`
}

type settingDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
