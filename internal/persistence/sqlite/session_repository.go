package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

const sessionColumns = `id, user_id, token, created_at, last_activity_at, expires_at, revoked_at`

// CreateSession stores a new session token for a user.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.UserID == 0 || strings.TrimSpace(session.Token) == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	if session.LastActivityAt.IsZero() {
		session.LastActivityAt = session.CreatedAt
	}

	_, err := s.exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Token,
		formatTime(session.CreatedAt), formatTime(session.LastActivityAt), formatTime(session.ExpiresAt),
		nullTime(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// GetSession retrieves a session by its token value.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var (
		session                      persistence.Session
		created, lastSeen, expiresAt string
		revoked                      sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token).Scan(
		&session.ID, &session.UserID, &session.Token, &created, &lastSeen, &expiresAt, &revoked,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, mapError(err)
	}

	if session.CreatedAt, err = parseTime(created); err != nil {
		return persistence.Session{}, err
	}
	if session.LastActivityAt, err = parseTime(lastSeen); err != nil {
		return persistence.Session{}, err
	}
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt, err = parseNullTime(revoked); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// UpdateSession persists activity, expiry and revocation changes.
func (s *Storage) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	result, err := s.exec(ctx, `
		UPDATE sessions SET token = ?, last_activity_at = ?, expires_at = ?, revoked_at = ?
		WHERE id = ?`,
		session.Token, formatTime(session.LastActivityAt), formatTime(session.ExpiresAt), nullTime(session.RevokedAt),
		session.ID,
	)
	if err != nil {
		return persistence.Session{}, err
	}
	if err := requireAffected(result); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// RevokeSession marks the session identified by token as revoked.
func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, err := s.GetSession(ctx, token)
	if err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt != nil {
		return session, nil
	}
	session.RevokedAt = &revokedAt
	return s.UpdateSession(ctx, session)
}

// RevokeUserSessions revokes every live session belonging to userID.
func (s *Storage) RevokeUserSessions(ctx context.Context, userID int64, revokedAt time.Time) error {
	_, err := s.exec(ctx, `UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
		formatTime(revokedAt), userID)
	return err
}

// DeleteExpiredSessions removes sessions that expired or were revoked before reference.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	ref := formatTime(reference)
	_, err := s.exec(ctx, `DELETE FROM sessions WHERE expires_at <= ? OR (revoked_at IS NOT NULL AND revoked_at <= ?)`, ref, ref)
	return err
}
