package sqlite

import (
	"context"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

// AdminSeed describes the administrator account created on first start.
type AdminSeed struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Mobile       string
	Now          time.Time
}

// EnsureAdmin creates the seed administrator unless the email is already taken.
// The account must change its password on first login. It reports whether a row was inserted.
func (s *Storage) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	now := formatTime(seed.Now)
	result, err := s.exec(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, mobile, role, status,
			must_change_password, registration_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(email) DO NOTHING`,
		normalizeEmail(seed.Email), seed.PasswordHash, seed.FirstName, seed.LastName, seed.Mobile,
		string(persistence.RoleAdmin), string(persistence.UserStatusActive), now, now,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
