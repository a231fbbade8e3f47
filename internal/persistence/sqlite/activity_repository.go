package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/recruitment-portal/internal/persistence"
)

// AppendActivity records an audit entry.
func (s *Storage) AppendActivity(ctx context.Context, activity persistence.Activity) error {
	_, err := s.exec(ctx, `INSERT INTO activities (activity_type, details, user_id, timestamp) VALUES (?, ?, ?, ?)`,
		activity.Type, activity.Details, activity.UserID, formatTime(activity.CreatedAt))
	return err
}

// ListActivities returns the newest entries first. A zero userID lists every entry.
func (s *Storage) ListActivities(ctx context.Context, userID int64, limit int) ([]persistence.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, activity_type, details, user_id, timestamp FROM activities`
	var args []any
	if userID != 0 {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var activities []persistence.Activity
	for rows.Next() {
		var (
			activity persistence.Activity
			user     sql.NullInt64
			ts       string
		)
		if err := rows.Scan(&activity.ID, &activity.Type, &activity.Details, &user, &ts); err != nil {
			return nil, mapError(err)
		}
		if user.Valid {
			id := user.Int64
			activity.UserID = &id
		}
		if activity.CreatedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// GetSetting reads an application setting.
func (s *Storage) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", persistence.ErrNotFound
		}
		return "", mapError(err)
	}
	return value, nil
}

// PutSetting creates or replaces an application setting.
func (s *Storage) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, `
		INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
