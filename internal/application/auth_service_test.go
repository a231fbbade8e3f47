package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/recruitment-portal/internal/persistence"
	"github.com/example/recruitment-portal/internal/persistence/sqlite"
	"github.com/example/recruitment-portal/internal/testfixtures"
)

type mailerStub struct {
	recipient string
	token     string
	err       error
}

func (m *mailerStub) SendPasswordReset(ctx context.Context, recipient, token string) error {
	m.recipient = recipient
	m.token = token
	return m.err
}

func testHasher() *PasswordHasher {
	return &PasswordHasher{Algorithm: HashBcrypt, BcryptCost: bcrypt.MinCost}
}

// racingUsers lets another redemption land between the token lookup and the write.
type racingUsers struct {
	*sqlite.Storage
	race func(persistence.User)
}

func (r racingUsers) GetUserByResetToken(ctx context.Context, token string) (persistence.User, error) {
	user, err := r.Storage.GetUserByResetToken(ctx, token)
	if err == nil && r.race != nil {
		r.race(user)
	}
	return user, err
}

type authFixture struct {
	storage *sqlite.Storage
	clock   *testfixtures.Clock
	mailer  *mailerStub
	svc     *AuthService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	storage := testfixtures.NewSQLiteStorage(t)
	clock := testfixtures.NewClock(time.Time{})
	mailer := &mailerStub{}
	svc := NewAuthService(AuthDependencies{
		Users:      storage,
		Sessions:   storage,
		Activities: storage,
		Hasher:     testHasher(),
		Mailer:     mailer,
		Now:        clock.NowFunc(),
	}, AuthSettings{SessionTTL: 12 * time.Hour, IdleTimeout: 30 * time.Minute, ResetTokenTTL: time.Hour})

	return authFixture{storage: storage, clock: clock, mailer: mailer, svc: svc}
}

func (f authFixture) register(t *testing.T, email, password string) persistence.User {
	t.Helper()

	user, err := f.svc.Register(context.Background(), RegisterParams{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		FirstName:       "Grace",
		LastName:        "Hopper",
		Mobile:          "+1 555 0100",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return user
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates candidate and records activity", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		user := f.register(t, " Grace@Example.com ", "secret1")
		if user.Email != "grace@example.com" {
			t.Fatalf("expected normalized email, got %s", user.Email)
		}
		if user.Role != persistence.RoleCandidate {
			t.Fatalf("expected candidate role, got %s", user.Role)
		}
		if user.PasswordHash == "secret1" {
			t.Fatal("expected password to be hashed")
		}

		activities, err := f.storage.ListActivities(context.Background(), user.ID, 10)
		if err != nil {
			t.Fatalf("ListActivities failed: %v", err)
		}
		if len(activities) != 1 || activities[0].Type != ActivityRegistration {
			t.Fatalf("expected one registration activity, got %#v", activities)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.register(t, "dup@example.com", "secret1")

		_, err := f.svc.Register(context.Background(), RegisterParams{
			Email: "DUP@example.com", Password: "secret1", ConfirmPassword: "secret1", FirstName: "A", LastName: "B",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		_, err := f.svc.Register(context.Background(), RegisterParams{
			Email: "not-an-email", Password: "abc", ConfirmPassword: "abd", Mobile: "x",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"email", "password", "mobile"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s to be reported, got %#v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("accepts an account without names", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		user, err := f.svc.Register(context.Background(), RegisterParams{
			Email: "a@b.com", Password: "pw1234", ConfirmPassword: "pw1234",
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.FirstName != "" || user.LastName != "" {
			t.Fatalf("expected empty names, got %q %q", user.FirstName, user.LastName)
		}

		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "a@b.com", Password: "pw1234"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.User.Role != persistence.RoleCandidate {
			t.Fatalf("expected candidate role, got %s", result.User.Role)
		}
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		user := f.register(t, "login@example.com", "secret1")
		f.clock.Advance(time.Hour)

		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "LOGIN@example.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.User.ID != user.ID {
			t.Fatalf("expected user %d, got %d", user.ID, result.User.ID)
		}
		if len(result.Session.Token) != 64 {
			t.Fatalf("expected 64 hex chars, got %q", result.Session.Token)
		}
		if !result.Session.ExpiresAt.Equal(f.clock.Now().Add(12 * time.Hour)) {
			t.Fatalf("unexpected expiry %v", result.Session.ExpiresAt)
		}

		stored, err := f.storage.GetUser(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if stored.LastLoginAt == nil || !stored.LastLoginAt.Equal(f.clock.Now()) {
			t.Fatalf("expected last login to be updated, got %v", stored.LastLoginAt)
		}
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.register(t, "known@example.com", "secret1")

		_, errUnknown := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "nobody@example.com", Password: "secret1"})
		_, errWrong := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "known@example.com", Password: "wrong!"})
		if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrong, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", errUnknown, errWrong)
		}
	})

	t.Run("rejects disabled accounts", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		user := f.register(t, "off@example.com", "secret1")
		user.Status = persistence.UserStatusDisabled
		if err := f.storage.UpdateUser(context.Background(), user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		_, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "off@example.com", Password: "secret1"})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})

	t.Run("upgrades hashes made by another algorithm", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		legacy, err := CreatePasswordHash("secret1", Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
		if err != nil {
			t.Fatalf("CreatePasswordHash failed: %v", err)
		}
		user := testfixtures.CreateCandidate(t, f.storage, testfixtures.WithEmail("legacy@example.com"), testfixtures.WithPasswordHash(legacy))

		if _, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "legacy@example.com", Password: "secret1"}); err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		stored, err := f.storage.GetUser(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if !isBcryptHash(stored.PasswordHash) {
			t.Fatalf("expected bcrypt rehash, got %s", stored.PasswordHash)
		}
	})

	t.Run("upgrades bcrypt hashes to argon2id", func(t *testing.T) {
		t.Parallel()
		storage := testfixtures.NewSQLiteStorage(t)
		svc := NewAuthService(AuthDependencies{
			Users:      storage,
			Sessions:   storage,
			Activities: storage,
			Hasher: &PasswordHasher{
				Algorithm: HashArgon2id,
				Argon2:    Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
			},
			Mailer: &mailerStub{},
			Now:    testfixtures.NewClock(time.Time{}).NowFunc(),
		}, AuthSettings{SessionTTL: time.Hour, IdleTimeout: 30 * time.Minute, ResetTokenTTL: time.Hour})

		legacy, err := testHasher().Hash("secret1")
		if err != nil {
			t.Fatalf("Hash failed: %v", err)
		}
		user := testfixtures.CreateCandidate(t, storage, testfixtures.WithEmail("bcrypt@example.com"), testfixtures.WithPasswordHash(legacy))

		if _, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "bcrypt@example.com", Password: "secret1"}); err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		stored, err := storage.GetUser(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
			t.Fatalf("expected argon2id rehash, got %s", stored.PasswordHash)
		}
		if err := VerifyPassword(stored.PasswordHash, "secret1"); err != nil {
			t.Fatalf("expected rehashed password to verify, got %v", err)
		}
		if _, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "bcrypt@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials after rehash, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	login := func(t *testing.T, f authFixture) AuthenticateResult {
		t.Helper()
		f.register(t, "session@example.com", "secret1")
		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "session@example.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		return result
	}

	t.Run("activity keeps the session alive", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		result := login(t, f)

		for i := 0; i < 3; i++ {
			f.clock.Advance(20 * time.Minute)
			principal, err := f.svc.ValidateSession(context.Background(), result.Session.Token)
			if err != nil {
				t.Fatalf("ValidateSession #%d failed: %v", i, err)
			}
			if principal.UserID != result.User.ID || !principal.IsCandidate() {
				t.Fatalf("unexpected principal %#v", principal)
			}
		}
	})

	t.Run("idle sessions expire and stay revoked", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		result := login(t, f)

		f.clock.Advance(31 * time.Minute)
		if _, err := f.svc.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if _, err := f.svc.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked on reuse, got %v", err)
		}
	})

	t.Run("logout invalidates the token", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		result := login(t, f)

		if err := f.svc.RevokeSession(context.Background(), result.Session.Token); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if _, err := f.svc.ValidateSession(context.Background(), result.Session.Token); err == nil {
			t.Fatal("expected revoked token to be rejected")
		}
		if err := f.svc.RevokeSession(context.Background(), "unknown"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for unknown token, got %v", err)
		}
	})

	t.Run("unknown tokens are unauthorized", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		if _, err := f.svc.ValidateSession(context.Background(), "missing"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if _, err := f.svc.ValidateSession(context.Background(), "  "); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for blank token, got %v", err)
		}
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("token is single use and revokes sessions", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.register(t, "reset@example.com", "secret1")
		login, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "reset@example.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		if err := f.svc.InitiatePasswordReset(context.Background(), "reset@example.com"); err != nil {
			t.Fatalf("InitiatePasswordReset failed: %v", err)
		}
		if f.mailer.recipient != "reset@example.com" || len(f.mailer.token) != 32 {
			t.Fatalf("unexpected mail %q/%q", f.mailer.recipient, f.mailer.token)
		}

		params := ResetPasswordParams{Token: f.mailer.token, NewPassword: "newpass", ConfirmPassword: "newpass"}
		if err := f.svc.ResetPassword(context.Background(), params); err != nil {
			t.Fatalf("ResetPassword failed: %v", err)
		}
		if err := f.svc.ResetPassword(context.Background(), params); !errors.Is(err, ErrInvalidResetToken) {
			t.Fatalf("expected ErrInvalidResetToken on reuse, got %v", err)
		}

		if _, err := f.svc.ValidateSession(context.Background(), login.Session.Token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected existing session to be revoked, got %v", err)
		}
		if _, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "reset@example.com", Password: "newpass"}); err != nil {
			t.Fatalf("login with new password failed: %v", err)
		}
	})

	t.Run("a token redeemed concurrently cannot be redeemed again", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.register(t, "twice@example.com", "secret1")
		if err := f.svc.InitiatePasswordReset(context.Background(), "twice@example.com"); err != nil {
			t.Fatalf("InitiatePasswordReset failed: %v", err)
		}

		users := racingUsers{Storage: f.storage}
		users.race = func(user persistence.User) {
			hash, err := testHasher().Hash("first!")
			if err != nil {
				t.Errorf("Hash failed: %v", err)
				return
			}
			if err := f.storage.RedeemResetToken(context.Background(), user.ID, user.ResetToken, hash, f.clock.Now()); err != nil {
				t.Errorf("concurrent redemption failed: %v", err)
			}
		}
		svc := NewAuthService(AuthDependencies{
			Users:      users,
			Sessions:   f.storage,
			Activities: f.storage,
			Hasher:     testHasher(),
			Mailer:     f.mailer,
			Now:        f.clock.NowFunc(),
		}, AuthSettings{SessionTTL: 12 * time.Hour, IdleTimeout: 30 * time.Minute, ResetTokenTTL: time.Hour})

		err := svc.ResetPassword(context.Background(), ResetPasswordParams{Token: f.mailer.token, NewPassword: "second", ConfirmPassword: "second"})
		if !errors.Is(err, ErrInvalidResetToken) {
			t.Fatalf("expected ErrInvalidResetToken, got %v", err)
		}
		if _, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "twice@example.com", Password: "first!"}); err != nil {
			t.Fatalf("expected the first redemption to stand, got %v", err)
		}
	})

	t.Run("expired tokens are rejected", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.register(t, "late@example.com", "secret1")

		if err := f.svc.InitiatePasswordReset(context.Background(), "late@example.com"); err != nil {
			t.Fatalf("InitiatePasswordReset failed: %v", err)
		}
		f.clock.Advance(time.Hour)

		err := f.svc.ResetPassword(context.Background(), ResetPasswordParams{Token: f.mailer.token, NewPassword: "newpass", ConfirmPassword: "newpass"})
		if !errors.Is(err, ErrInvalidResetToken) {
			t.Fatalf("expected ErrInvalidResetToken, got %v", err)
		}
	})

	t.Run("unknown email is reported", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		if err := f.svc.InitiatePasswordReset(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("mail failures do not fail the request", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.register(t, "bounce@example.com", "secret1")
		f.mailer.err = errors.New("smtp down")

		if err := f.svc.InitiatePasswordReset(context.Background(), "bounce@example.com"); err != nil {
			t.Fatalf("expected mail failure to be tolerated, got %v", err)
		}
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	user := f.register(t, "change@example.com", "secret1")
	user.MustChangePassword = true
	if err := f.storage.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	principal := Principal{UserID: user.ID, Role: persistence.RoleCandidate}

	err := f.svc.ChangePassword(context.Background(), ChangePasswordParams{
		Principal: principal, CurrentPassword: "wrong!", NewPassword: "rotated", ConfirmPassword: "rotated",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	err = f.svc.ChangePassword(context.Background(), ChangePasswordParams{
		Principal: principal, CurrentPassword: "secret1", NewPassword: "rotated", ConfirmPassword: "rotated",
	})
	if err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	stored, err := f.storage.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if stored.MustChangePassword {
		t.Fatal("expected forced rotation flag to be cleared")
	}
	if err := testHasher().Verify(stored.PasswordHash, "rotated"); err != nil {
		t.Fatalf("expected new password to verify: %v", err)
	}
}
