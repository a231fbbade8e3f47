package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/navigation"
	"github.com/example/recruitment-portal/internal/observability/metrics"
	"github.com/example/recruitment-portal/internal/persistence"
)

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	Register(ctx context.Context, params application.RegisterParams) (persistence.User, error)
	InitiatePasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, params application.ResetPasswordParams) error
	ChangePassword(ctx context.Context, params application.ChangePasswordParams) error
	RevokeSession(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (application.Principal, error)
}

// AuthHandlerOptions tunes the public authentication endpoints.
type AuthHandlerOptions struct {
	// ConcealResetEnumeration answers 202 for unknown emails on reset initiation.
	ConcealResetEnumeration bool
}

type AuthHandler struct {
	service   authService
	options   AuthHandlerOptions
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, options AuthHandlerOptions, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, options: options, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// CreateSession handles POST /sessions.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "CreateSession", "email", email)

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		metrics.ObserveLogin(application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	metrics.ObserveLogin("success")

	setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.Header().Set("X-Session-Token", result.Session.Token)

	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "user authenticated")

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, loginResponse{
		Token:     result.Session.Token,
		ExpiresAt: formatTime(result.Session.ExpiresAt),
		Home:      string(navigation.Home(result.User.Role)),
		User:      toUserDTO(result.User),
	})
}

// DeleteCurrentSession handles DELETE /sessions/current.
func (h *AuthHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token := extractTokenFromRequest(r)
	if token == "" {
		h.responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_REQUIRED",
			Message:   errMissingSessionToken.Error(),
		})
		return
	}

	if err := h.service.RevokeSession(r.Context(), token); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	clearSessionCookie(w)
	h.log(r.Context(), "DeleteCurrentSession").InfoContext(r.Context(), "session revoked for current principal")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Register handles POST /registrations.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.service.Register(r.Context(), application.RegisterParams{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Mobile:          req.Mobile,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Register", "user_id", user.ID).InfoContext(r.Context(), "candidate registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, userResponse{User: toUserDTO(user)})
}

// InitiatePasswordReset handles POST /password-resets.
func (h *AuthHandler) InitiatePasswordReset(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req passwordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.InitiatePasswordReset(r.Context(), req.Email)
	if err != nil && !(h.options.ConcealResetEnumeration && errors.Is(err, application.ErrNotFound)) {
		metrics.ObservePasswordReset("initiate", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if err != nil {
		metrics.ObservePasswordReset("initiate", "concealed")
	} else {
		metrics.ObservePasswordReset("initiate", "success")
	}

	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, statusResponse{Status: "reset_link_sent"})
}

// ConfirmPasswordReset handles POST /password-resets/confirm.
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req confirmResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.ResetPassword(r.Context(), application.ResetPasswordParams{
		Token:           req.Token,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		metrics.ObservePasswordReset("confirm", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	metrics.ObservePasswordReset("confirm", "success")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ChangePassword handles PUT /me/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.ChangePassword(r.Context(), application.ChangePasswordParams{
		Principal:       principal,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Navigation handles GET /navigation?page=. A session is optional; an invalid one
// is treated as no session.
func (h *AuthHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var state navigation.State
	if token := extractTokenFromRequest(r); token != "" {
		if principal, err := h.service.ValidateSession(r.Context(), token); err == nil {
			state = navigation.State{Authenticated: true, Role: principal.Role, MustChangePassword: principal.MustChangePassword}
		}
	}

	requested, ok := navigation.ParsePage(r.URL.Query().Get("page"))
	if !ok {
		requested = navigation.Landing
	}
	page := navigation.Resolve(state, requested)

	h.responder.writeJSON(r.Context(), w, http.StatusOK, navigationResponse{
		Page:          string(page),
		Authenticated: state.Authenticated,
		Role:          string(state.Role),
		Sections:      navigation.Sections(page),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expires_at"`
	Home      string  `json:"home"`
	User      userDTO `json:"user"`
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Mobile          string `json:"mobile"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type navigationResponse struct {
	Page          string               `json:"page"`
	Authenticated bool                 `json:"authenticated"`
	Role          string               `json:"role,omitempty"`
	Sections      []navigation.Section `json:"sections"`
}

type userResponse struct {
	User userDTO `json:"user"`
}

type statusResponse struct {
	Status string `json:"status"`
}
