package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

const userColumns = `id, email, password_hash, first_name, last_name, mobile, role, status,
	must_change_password, profile_locked, home_address, age, location, country, profile_picture,
	reset_token, reset_token_expires_at, registration_date, last_login, last_activity, updated_at`

// CreateUser inserts a user and returns it with its assigned id.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	user.Email = normalizeEmail(user.Email)
	if user.Email == "" || user.PasswordHash == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}
	if user.Status == "" {
		user.Status = persistence.UserStatusActive
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.RegisteredAt
	}

	result, err := s.exec(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, mobile, role, status,
			must_change_password, profile_locked, home_address, age, location, country, profile_picture,
			reset_token, reset_token_expires_at, registration_date, last_login, last_activity, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Mobile, string(user.Role), string(user.Status),
		boolToInt(user.MustChangePassword), boolToInt(user.ProfileLocked), user.HomeAddress, user.Age, user.Location, user.Country, nullBlob(user.ProfilePicture),
		nullString(user.ResetToken), nullTime(user.ResetTokenExpiresAt), formatTime(user.RegisteredAt),
		nullTime(user.LastLoginAt), nullTime(user.LastActivityAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		return persistence.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.User{}, err
	}
	user.ID = id
	return user, nil
}

// UpdateUser overwrites every mutable column of an existing user.
func (s *Storage) UpdateUser(ctx context.Context, user persistence.User) error {
	result, err := s.exec(ctx, `
		UPDATE users SET email = ?, password_hash = ?, first_name = ?, last_name = ?, mobile = ?, role = ?, status = ?,
			must_change_password = ?, profile_locked = ?, home_address = ?, age = ?, location = ?, country = ?,
			profile_picture = ?, reset_token = ?, reset_token_expires_at = ?, last_login = ?, last_activity = ?, updated_at = ?
		WHERE id = ?`,
		normalizeEmail(user.Email), user.PasswordHash, user.FirstName, user.LastName, user.Mobile, string(user.Role), string(user.Status),
		boolToInt(user.MustChangePassword), boolToInt(user.ProfileLocked), user.HomeAddress, user.Age, user.Location, user.Country,
		nullBlob(user.ProfilePicture), nullString(user.ResetToken), nullTime(user.ResetTokenExpiresAt),
		nullTime(user.LastLoginAt), nullTime(user.LastActivityAt), formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// TouchUserActivity records the time of the user's latest authenticated request.
func (s *Storage) TouchUserActivity(ctx context.Context, id int64, at time.Time) error {
	result, err := s.exec(ctx, `UPDATE users SET last_activity = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// GetUser loads a user by id.
func (s *Storage) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail loads a user by case-insensitive email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalized)
	return scanUser(row)
}

// GetUserByResetToken loads the user holding an outstanding reset token.
func (s *Storage) GetUserByResetToken(ctx context.Context, token string) (persistence.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token = ?`, token)
	return scanUser(row)
}

// RedeemResetToken replaces the password hash and clears the reset token,
// provided the user still holds token. Returns ErrNotFound otherwise.
func (s *Storage) RedeemResetToken(ctx context.Context, id int64, token, passwordHash string, at time.Time) error {
	result, err := s.exec(ctx, `
		UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expires_at = NULL,
			must_change_password = 0, updated_at = ?
		WHERE id = ? AND reset_token = ?`,
		passwordHash, formatTime(at), id, token,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ListUsers returns users ordered by registration date, newest first.
func (s *Storage) ListUsers(ctx context.Context, filter persistence.UserFilter) ([]persistence.User, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Role != "" {
		clauses = append(clauses, "role = ?")
		args = append(args, string(filter.Role))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		clauses = append(clauses, "(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY registration_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                                          persistence.User
		role, status                                  string
		mustChange, locked                            int
		resetToken, resetExpires, lastLogin, lastSeen sql.NullString
		registered, updated                           string
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Mobile, &role, &status,
		&mustChange, &locked, &user.HomeAddress, &user.Age, &user.Location, &user.Country, &user.ProfilePicture,
		&resetToken, &resetExpires, &registered, &lastLogin, &lastSeen, &updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, mapError(err)
	}

	user.Role = persistence.Role(role)
	user.Status = persistence.UserStatus(status)
	user.MustChangePassword = mustChange != 0
	user.ProfileLocked = locked != 0
	user.ResetToken = resetToken.String

	if user.RegisteredAt, err = parseTime(registered); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.User{}, err
	}
	if user.ResetTokenExpiresAt, err = parseNullTime(resetExpires); err != nil {
		return persistence.User{}, fmt.Errorf("reset_token_expires_at: %w", err)
	}
	if user.LastLoginAt, err = parseNullTime(lastLogin); err != nil {
		return persistence.User{}, fmt.Errorf("last_login: %w", err)
	}
	if user.LastActivityAt, err = parseNullTime(lastSeen); err != nil {
		return persistence.User{}, fmt.Errorf("last_activity: %w", err)
	}
	return user, nil
}
