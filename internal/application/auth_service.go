package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/recruitment-portal/internal/persistence"
)

// ResetMailer delivers password-reset tokens. Delivery is best effort.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, recipient, token string) error
}

// AuthSettings holds the session and reset-token lifetimes.
type AuthSettings struct {
	SessionTTL    time.Duration
	IdleTimeout   time.Duration
	ResetTokenTTL time.Duration
}

// AuthDependencies groups the collaborators of AuthService. Generators and clock default when nil.
type AuthDependencies struct {
	Users              persistence.UserRepository
	Sessions           persistence.SessionRepository
	Activities         persistence.ActivityRepository
	Hasher             *PasswordHasher
	Mailer             ResetMailer
	TokenGenerator     func() (string, error)
	ResetTokens        func() (string, error)
	SessionIDGenerator func() string
	Now                func() time.Time
}

// AuthService coordinates login, registration, password recovery and session lifecycle.
type AuthService struct {
	users          persistence.UserRepository
	sessions       persistence.SessionRepository
	activity       activityRecorder
	hasher         *PasswordHasher
	mailer         ResetMailer
	tokenGenerator func() (string, error)
	resetTokens    func() (string, error)
	sessionIDs     func() string
	now            func() time.Time
	settings       AuthSettings
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(deps AuthDependencies, settings AuthSettings) *AuthService {
	return NewAuthServiceWithLogger(deps, settings, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(deps AuthDependencies, settings AuthSettings, logger *slog.Logger) *AuthService {
	if deps.Hasher == nil {
		deps.Hasher = &PasswordHasher{Algorithm: HashArgon2id, Argon2: DefaultArgon2idParams}
	}
	if deps.TokenGenerator == nil {
		deps.TokenGenerator = GenerateSessionToken
	}
	if deps.ResetTokens == nil {
		deps.ResetTokens = GenerateResetToken
	}
	if deps.SessionIDGenerator == nil {
		deps.SessionIDGenerator = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 12 * time.Hour
	}
	if settings.IdleTimeout <= 0 {
		settings.IdleTimeout = 30 * time.Minute
	}
	if settings.ResetTokenTTL <= 0 {
		settings.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		users:          deps.Users,
		sessions:       deps.Sessions,
		activity:       activityRecorder{repo: deps.Activities, now: deps.Now},
		hasher:         deps.Hasher,
		mailer:         deps.Mailer,
		tokenGenerator: deps.TokenGenerator,
		resetTokens:    deps.ResetTokens,
		sessionIDs:     deps.SessionIDGenerator,
		now:            deps.Now,
		settings:       settings,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

func (s *AuthService) ready() error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}
	return nil
}

// Authenticate validates credentials and issues a new session.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if err = s.ready(); err != nil {
		return
	}

	email := normalizeEmail(params.Email)
	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		logOutcome(ctx, logger, err, "authentication", "user_id", result.User.ID, "session_id", result.Session.ID)
	}()

	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var user persistence.User
	user, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if verifyErr := s.hasher.Verify(user.PasswordHash, params.Password); verifyErr != nil {
		if !errors.Is(verifyErr, ErrInvalidCredentials) {
			logger.WarnContext(ctx, "stored password hash rejected", "user_id", user.ID, "error", verifyErr)
		}
		err = ErrInvalidCredentials
		return
	}
	if user.Status == persistence.UserStatusDisabled {
		err = ErrAccountDisabled
		return
	}

	now := s.now()
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if rehashed, hashErr := s.hasher.Hash(params.Password); hashErr == nil {
			user.PasswordHash = rehashed
		} else {
			logger.WarnContext(ctx, "password rehash failed", "user_id", user.ID, "error", hashErr)
		}
	}
	user.LastLoginAt = &now
	user.LastActivityAt = &now
	user.UpdatedAt = now
	if err = s.users.UpdateUser(ctx, user); err != nil {
		err = translateStoreError(err)
		return
	}

	var token string
	if token, err = s.tokenGenerator(); err != nil {
		return
	}
	session := persistence.Session{
		ID:             s.sessionIDs(),
		UserID:         user.ID,
		Token:          token,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.settings.SessionTTL),
	}

	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}
	if session, err = s.sessions.CreateSession(ctx, session); err != nil {
		return
	}

	s.activity.record(ctx, logger, ActivityLogin, "signed in", user.ID)
	result = AuthenticateResult{User: user, Session: session}
	return
}

// Register creates a candidate account. Names and mobile are optional at
// sign-up; the profile update requires the names.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user persistence.User, err error) {
	if err = s.ready(); err != nil {
		return
	}

	email := normalizeEmail(params.Email)
	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() { logOutcome(ctx, logger, err, "registration", "user_id", user.ID) }()

	first := strings.TrimSpace(params.FirstName)
	last := strings.TrimSpace(params.LastName)
	mobile := strings.TrimSpace(params.Mobile)

	vErr := &ValidationError{}
	validateEmail(vErr, "email", email)
	validateNewPassword(vErr, params.Password, params.ConfirmPassword)
	validatePhone(vErr, "mobile", mobile, false)
	if err = vErr.orNil(); err != nil {
		return
	}

	var hash string
	if hash, err = s.hasher.Hash(params.Password); err != nil {
		return
	}

	now := s.now()
	user, err = s.users.CreateUser(ctx, persistence.User{
		Email:          email,
		PasswordHash:   hash,
		FirstName:      first,
		LastName:       last,
		Mobile:         mobile,
		Role:           persistence.RoleCandidate,
		Status:         persistence.UserStatusActive,
		RegisteredAt:   now,
		LastLoginAt:    &now,
		LastActivityAt: &now,
		UpdatedAt:      now,
	})
	if err != nil {
		err = translateStoreError(err)
		return
	}

	s.activity.record(ctx, logger, ActivityRegistration, "new candidate "+email, user.ID)
	return
}

// InitiatePasswordReset issues a reset token for email and hands it to the mailer.
// Unknown emails return ErrNotFound, which lets callers learn whether an account exists.
func (s *AuthService) InitiatePasswordReset(ctx context.Context, email string) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "InitiatePasswordReset")
	defer func() { logOutcome(ctx, logger, err, "password reset initiation") }()

	if email == "" {
		err = validationFailure("email", "email is required")
		return
	}

	var user persistence.User
	if user, err = s.users.GetUserByEmail(ctx, email); err != nil {
		err = translateStoreError(err)
		return
	}

	var token string
	if token, err = s.resetTokens(); err != nil {
		return
	}
	now := s.now()
	expires := now.Add(s.settings.ResetTokenTTL)
	user.ResetToken = token
	user.ResetTokenExpiresAt = &expires
	user.UpdatedAt = now
	if err = s.users.UpdateUser(ctx, user); err != nil {
		err = translateStoreError(err)
		return
	}

	if s.mailer != nil {
		if sendErr := s.mailer.SendPasswordReset(ctx, user.Email, token); sendErr != nil {
			logger.WarnContext(ctx, "reset mail delivery failed", "user_id", user.ID, "error", sendErr)
		}
	}
	return nil
}

// ResetPassword redeems a single-use token and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, params ResetPasswordParams) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	token := strings.TrimSpace(params.Token)
	logger := s.loggerWith(ctx, "ResetPassword", "token_provided", token != "")
	defer func() { logOutcome(ctx, logger, err, "password reset") }()

	vErr := &ValidationError{}
	validateNewPassword(vErr, params.NewPassword, params.ConfirmPassword)
	if err = vErr.orNil(); err != nil {
		return
	}
	if token == "" {
		err = ErrInvalidResetToken
		return
	}

	var user persistence.User
	user, err = s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidResetToken
		}
		return
	}

	now := s.now()
	if user.ResetTokenExpiresAt != nil && !user.ResetTokenExpiresAt.After(now) {
		user.ResetToken = ""
		user.ResetTokenExpiresAt = nil
		user.UpdatedAt = now
		if updateErr := s.users.UpdateUser(ctx, user); updateErr != nil {
			logger.WarnContext(ctx, "failed to clear expired reset token", "user_id", user.ID, "error", updateErr)
		}
		err = ErrInvalidResetToken
		return
	}

	var hash string
	if hash, err = s.hasher.Hash(params.NewPassword); err != nil {
		return
	}
	if err = s.users.RedeemResetToken(ctx, user.ID, token, hash, now); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidResetToken
		} else {
			err = translateStoreError(err)
		}
		return
	}

	if err = s.sessions.RevokeUserSessions(ctx, user.ID, now); err != nil {
		return
	}
	s.activity.record(ctx, logger, ActivityPasswordReset, "password reset via token", user.ID)
	return nil
}

// ChangePassword rotates the signed-in user's password and lifts any forced-rotation flag.
func (s *AuthService) ChangePassword(ctx context.Context, params ChangePasswordParams) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ChangePassword", "user_id", params.Principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "password change") }()

	if params.Principal.UserID == 0 {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if params.CurrentPassword == "" {
		vErr.add("current_password", "current password is required")
	}
	validateNewPassword(vErr, params.NewPassword, params.ConfirmPassword)
	if params.NewPassword != "" && params.NewPassword == params.CurrentPassword {
		vErr.add("password", "new password must differ from the current one")
	}
	if err = vErr.orNil(); err != nil {
		return
	}

	var user persistence.User
	if user, err = s.users.GetUser(ctx, params.Principal.UserID); err != nil {
		err = translateStoreError(err)
		return
	}
	if verifyErr := s.hasher.Verify(user.PasswordHash, params.CurrentPassword); verifyErr != nil {
		err = ErrInvalidCredentials
		return
	}

	var hash string
	if hash, err = s.hasher.Hash(params.NewPassword); err != nil {
		return
	}
	now := s.now()
	user.PasswordHash = hash
	user.MustChangePassword = false
	user.UpdatedAt = now
	if err = s.users.UpdateUser(ctx, user); err != nil {
		err = translateStoreError(err)
		return
	}

	s.activity.record(ctx, logger, ActivityPasswordChanged, "password changed", user.ID)
	return nil
}

// RevokeSession invalidates an existing session token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if err := s.ready(); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", true)

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.WarnContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials, "error_kind", ErrorKind(ErrInvalidCredentials))
			return ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session revoked")
	return nil
}

// ValidateSession resolves token to a principal and refreshes its activity timestamp.
// A session idle for longer than the idle timeout is revoked and reported as expired.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if err = s.ready(); err != nil {
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "session validated", "principal_id", principal.UserID)
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	var session persistence.Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	switch {
	case session.RevokedAt != nil:
		err = ErrSessionRevoked
		return
	case !session.ExpiresAt.After(now):
		err = ErrSessionExpired
		return
	case now.Sub(session.LastActivityAt) > s.settings.IdleTimeout:
		if _, revokeErr := s.sessions.RevokeSession(ctx, trimmed, now); revokeErr != nil {
			logger.WarnContext(ctx, "failed to revoke idle session", "session_id", session.ID, "error", revokeErr)
		}
		err = ErrSessionExpired
		return
	}

	var user persistence.User
	user, err = s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}
	if user.Status == persistence.UserStatusDisabled {
		if _, revokeErr := s.sessions.RevokeSession(ctx, trimmed, now); revokeErr != nil {
			logger.WarnContext(ctx, "failed to revoke session of disabled user", "session_id", session.ID, "error", revokeErr)
		}
		err = ErrAccountDisabled
		return
	}

	session.LastActivityAt = now
	if _, err = s.sessions.UpdateSession(ctx, session); err != nil {
		return
	}
	if err = s.users.TouchUserActivity(ctx, user.ID, now); err != nil {
		return
	}

	principal = Principal{
		UserID:             user.ID,
		Role:               user.Role,
		SessionID:          session.ID,
		MustChangePassword: user.MustChangePassword,
	}
	return
}
