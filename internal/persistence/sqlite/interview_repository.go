package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/recruitment-portal/internal/persistence"
)

const interviewColumns = `id, candidate_id, date, time, type, role, dress_code, stage, status,
	candidate_response, candidate_note, created_at, updated_at`

// CreateInterviews inserts a batch of interviews in one transaction.
func (s *Storage) CreateInterviews(ctx context.Context, interviews []persistence.Interview) ([]persistence.Interview, error) {
	created := make([]persistence.Interview, 0, len(interviews))
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		for _, iv := range interviews {
			result, err := tx.ExecContext(ctx, `
				INSERT INTO interviews (candidate_id, date, time, type, role, dress_code, stage, status,
					candidate_response, candidate_note, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				iv.CandidateID, iv.Date, iv.Time, iv.Type, iv.Role, iv.DressCode, iv.Stage, string(iv.Status),
				iv.CandidateResponse, iv.CandidateNote, formatTime(iv.CreatedAt), formatTime(iv.UpdatedAt),
			)
			if err != nil {
				return mapError(err)
			}
			if iv.ID, err = result.LastInsertId(); err != nil {
				return err
			}
			created = append(created, iv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetInterview loads an interview by id.
func (s *Storage) GetInterview(ctx context.Context, id int64) (persistence.Interview, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = ?`, id)
	return scanInterview(row)
}

// ListInterviews returns interviews ordered by date and time, latest first.
// A zero candidateID lists every interview.
func (s *Storage) ListInterviews(ctx context.Context, candidateID int64) ([]persistence.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews`
	var args []any
	if candidateID != 0 {
		query += " WHERE candidate_id = ?"
		args = append(args, candidateID)
	}
	query += " ORDER BY date DESC, time DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var interviews []persistence.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, iv)
	}
	return interviews, rows.Err()
}

// UpdateInterview overwrites the mutable fields of an interview.
func (s *Storage) UpdateInterview(ctx context.Context, iv persistence.Interview) error {
	result, err := s.exec(ctx, `
		UPDATE interviews SET date = ?, time = ?, type = ?, role = ?, dress_code = ?, stage = ?, status = ?,
			candidate_response = ?, candidate_note = ?, updated_at = ?
		WHERE id = ?`,
		iv.Date, iv.Time, iv.Type, iv.Role, iv.DressCode, iv.Stage, string(iv.Status),
		iv.CandidateResponse, iv.CandidateNote, formatTime(iv.UpdatedAt), iv.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanInterview(row rowScanner) (persistence.Interview, error) {
	var (
		iv               persistence.Interview
		status           string
		created, updated string
	)
	err := row.Scan(&iv.ID, &iv.CandidateID, &iv.Date, &iv.Time, &iv.Type, &iv.Role, &iv.DressCode, &iv.Stage, &status,
		&iv.CandidateResponse, &iv.CandidateNote, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Interview{}, persistence.ErrNotFound
		}
		return persistence.Interview{}, mapError(err)
	}
	iv.Status = persistence.InterviewStatus(status)
	if iv.CreatedAt, err = parseTime(created); err != nil {
		return persistence.Interview{}, err
	}
	if iv.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.Interview{}, err
	}
	return iv, nil
}
