package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/recruitment-portal/internal/persistence"
)

// CreatePosition stores a new position. Titles are unique.
func (s *Storage) CreatePosition(ctx context.Context, position persistence.Position) (persistence.Position, error) {
	position.Title = strings.TrimSpace(position.Title)
	result, err := s.exec(ctx, `
		INSERT INTO positions (title, description, required_staff, filled_staff, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		position.Title, position.Description, position.RequiredStaff, position.FilledStaff, formatTime(position.CreatedAt),
	)
	if err != nil {
		return persistence.Position{}, err
	}
	if position.ID, err = result.LastInsertId(); err != nil {
		return persistence.Position{}, err
	}
	return position, nil
}

// GetPosition loads a position by id.
func (s *Storage) GetPosition(ctx context.Context, id int64) (persistence.Position, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, required_staff, filled_staff, created_at FROM positions WHERE id = ?`, id)
	return scanPosition(row)
}

// ListPositions returns positions ordered by title.
func (s *Storage) ListPositions(ctx context.Context) ([]persistence.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, required_staff, filled_staff, created_at FROM positions ORDER BY title, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var positions []persistence.Position
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	return positions, rows.Err()
}

// UpdatePosition overwrites a position; concurrent writers are not arbitrated.
func (s *Storage) UpdatePosition(ctx context.Context, position persistence.Position) error {
	result, err := s.exec(ctx, `
		UPDATE positions SET title = ?, description = ?, required_staff = ?, filled_staff = ? WHERE id = ?`,
		strings.TrimSpace(position.Title), position.Description, position.RequiredStaff, position.FilledStaff, position.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanPosition(row rowScanner) (persistence.Position, error) {
	var (
		position persistence.Position
		created  string
	)
	err := row.Scan(&position.ID, &position.Title, &position.Description, &position.RequiredStaff, &position.FilledStaff, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Position{}, persistence.ErrNotFound
		}
		return persistence.Position{}, mapError(err)
	}
	if position.CreatedAt, err = parseTime(created); err != nil {
		return persistence.Position{}, err
	}
	return position, nil
}
