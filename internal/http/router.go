package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/recruitment-portal/internal/observability/metrics"
	"github.com/example/recruitment-portal/internal/persistence"
)

type RouterConfig struct {
	Auth         *AuthHandler
	Accounts     *AccountHandler
	Applications *ApplicationHandler
	Documents    *DocumentHandler
	Messages     *MessageHandler
	EditRequests *EditRequestHandler
	Screening    *ScreeningHandler
	Interviews   *InterviewHandler
	Positions    *PositionHandler
	Dashboard    *DashboardHandler

	Sessions SessionValidator
	// Health reports whether the backing stores are reachable.
	Health func(ctx context.Context) error
	Logger *slog.Logger
	// Middleware wraps the whole router, outermost first.
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	logger := defaultLogger(cfg.Logger)

	session := RequireSession(cfg.Sessions, logger)
	rotated := RequirePasswordRotated(logger)
	member := chain(session, rotated)
	admin := chain(session, rotated, RequireRole(persistence.RoleAdmin, logger))
	candidate := chain(session, rotated, RequireRole(persistence.RoleCandidate, logger))

	handle := func(pattern string, gate func(http.Handler) http.Handler, h http.HandlerFunc) {
		if gate == nil {
			mux.Handle(pattern, h)
			return
		}
		mux.Handle(pattern, gate(h))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				newResponder(logger).writeError(r.Context(), w, http.StatusServiceUnavailable, err)
				return
			}
		}
		newResponder(logger).writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	if h := cfg.Auth; h != nil {
		handle("POST /sessions", nil, h.CreateSession)
		handle("DELETE /sessions/current", nil, h.DeleteCurrentSession)
		handle("POST /registrations", nil, h.Register)
		handle("POST /password-resets", nil, h.InitiatePasswordReset)
		handle("POST /password-resets/confirm", nil, h.ConfirmPasswordReset)
		handle("GET /navigation", nil, h.Navigation)
		// reachable before a seeded password is rotated
		handle("PUT /me/password", session, h.ChangePassword)
	}

	if h := cfg.Accounts; h != nil {
		handle("GET /me", session, h.GetProfile)
		handle("PUT /me", member, h.UpdateProfile)
		handle("GET /admin/candidates", admin, h.ListCandidates)
		handle("GET /admin/candidates/{id}", admin, h.GetCandidate)
		handle("PUT /admin/candidates/{id}/status", admin, h.SetCandidateStatus)
		handle("PUT /admin/candidates/{id}/lock", admin, h.SetProfileLock)
	}

	if h := cfg.Applications; h != nil {
		handle("GET /me/application", candidate, h.GetCurrent)
		handle("POST /me/application", candidate, h.Submit)
		handle("GET /admin/applications", admin, h.List)
		handle("GET /admin/applications/{id}", admin, h.Get)
		handle("PUT /admin/applications/{id}/status", admin, h.UpdateStatus)
		handle("GET /admin/applications/{id}/resume", admin, h.Resume)
		handle("GET /admin/applications/{id}/resume/text", admin, h.ResumeText)
		handle("GET /admin/applications/{id}/cover-letter", admin, h.CoverLetter)
	}

	if h := cfg.Documents; h != nil {
		handle("GET /me/documents", candidate, h.ListOwn)
		handle("POST /me/documents", candidate, h.Upload)
		handle("GET /me/documents/{id}", candidate, h.DownloadOwn)
		handle("DELETE /me/documents/{id}", candidate, h.DeleteOwn)
		handle("GET /admin/documents", admin, h.ListAll)
		handle("GET /admin/documents/{id}/content", admin, h.Download)
	}

	if h := cfg.Messages; h != nil {
		handle("GET /me/messages", candidate, h.List)
		handle("POST /me/messages", candidate, h.Send)
		handle("POST /me/messages/{id}/read", candidate, h.MarkRead)
		handle("DELETE /me/messages/{id}", candidate, h.Delete)
		handle("GET /admin/messages", admin, h.ListAll)
		handle("POST /admin/messages", admin, h.Send)
		handle("POST /admin/messages/{id}/read", admin, h.MarkRead)
		handle("DELETE /admin/messages/{id}", admin, h.Delete)
	}

	if h := cfg.EditRequests; h != nil {
		handle("GET /me/edit-requests", candidate, h.ListOwn)
		handle("POST /me/edit-requests", candidate, h.Submit)
		handle("GET /admin/edit-requests", admin, h.List)
		handle("PUT /admin/edit-requests/{id}", admin, h.Resolve)
	}

	if h := cfg.Screening; h != nil {
		handle("GET /me/tests", candidate, h.ListAssignments)
		handle("GET /me/tests/{id}", candidate, h.GetAssignedTest)
		handle("POST /me/tests/{id}/start", candidate, h.Start)
		handle("POST /me/tests/{id}/submit", candidate, h.Submit)
		handle("GET /admin/tests", admin, h.ListTests)
		handle("POST /admin/tests", admin, h.CreateTest)
		handle("GET /admin/tests/{id}", admin, h.GetTest)
		handle("GET /admin/tests/{id}/assignments", admin, h.ListTestAssignments)
		handle("POST /admin/tests/{id}/assignments", admin, h.Assign)
	}

	if h := cfg.Interviews; h != nil {
		handle("GET /me/interviews", candidate, h.ListOwn)
		handle("PUT /me/interviews/{id}/response", candidate, h.Respond)
		handle("GET /admin/interviews", admin, h.List)
		handle("POST /admin/interviews", admin, h.Schedule)
		handle("PUT /admin/interviews/{id}/status", admin, h.UpdateStatus)
		handle("PUT /admin/interviews/{id}/schedule", admin, h.Reschedule)
	}

	if h := cfg.Positions; h != nil {
		handle("GET /admin/positions", admin, h.List)
		handle("POST /admin/positions", admin, h.Create)
		handle("PUT /admin/positions/{id}/filled", admin, h.UpdateFilled)
	}

	if h := cfg.Dashboard; h != nil {
		handle("GET /admin/overview", admin, h.Overview)
		handle("GET /admin/activities", admin, h.Activities)
		handle("GET /admin/settings/{key}", admin, h.GetSetting)
		handle("PUT /admin/settings/{key}", admin, h.PutSetting)
	}

	// The mux records the matched pattern on the request it receives, so the
	// metrics middleware must sit directly around it.
	var handler http.Handler = metrics.HTTPMetricsMiddleware(mux)
	return chain(cfg.Middleware...)(handler)
}
