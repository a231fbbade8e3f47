package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/recruitment-portal/internal/persistence"
)

// CreateApplication stores a submitted application with its attachments.
func (s *Storage) CreateApplication(ctx context.Context, app persistence.Application) (persistence.Application, error) {
	data, err := json.Marshal(app.Form)
	if err != nil {
		return persistence.Application{}, fmt.Errorf("encode application form: %w", err)
	}

	result, err := s.exec(ctx, `
		INSERT INTO applications (user_id, application_data, status, submitted_date, last_modified, resume, cover_letter)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		app.UserID, string(data), string(app.Status), formatTime(app.SubmittedAt), formatTime(app.ModifiedAt),
		nullBlob(app.Resume), nullBlob(app.CoverLetter),
	)
	if err != nil {
		return persistence.Application{}, err
	}
	if app.ID, err = result.LastInsertId(); err != nil {
		return persistence.Application{}, err
	}
	return app, nil
}

// UpdateApplication overwrites the form, status, timestamps and attachments.
// Nil attachments leave the stored blobs untouched.
func (s *Storage) UpdateApplication(ctx context.Context, app persistence.Application) error {
	data, err := json.Marshal(app.Form)
	if err != nil {
		return fmt.Errorf("encode application form: %w", err)
	}

	result, err := s.exec(ctx, `
		UPDATE applications SET application_data = ?, status = ?, submitted_date = ?, last_modified = ?,
			resume = COALESCE(?, resume), cover_letter = COALESCE(?, cover_letter)
		WHERE id = ?`,
		string(data), string(app.Status), formatTime(app.SubmittedAt), formatTime(app.ModifiedAt),
		nullBlob(app.Resume), nullBlob(app.CoverLetter), app.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// GetApplication loads an application including attachments.
func (s *Storage) GetApplication(ctx context.Context, id int64) (persistence.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.user_id, a.application_data, a.status, a.submitted_date, a.last_modified, a.resume, a.cover_letter,
			u.first_name || ' ' || u.last_name, u.email
		FROM applications a JOIN users u ON u.id = a.user_id
		WHERE a.id = ?`, id)
	return scanApplication(row, true)
}

// GetLatestApplication loads the most recently submitted application of a user.
func (s *Storage) GetLatestApplication(ctx context.Context, userID int64) (persistence.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.user_id, a.application_data, a.status, a.submitted_date, a.last_modified, a.resume, a.cover_letter,
			u.first_name || ' ' || u.last_name, u.email
		FROM applications a JOIN users u ON u.id = a.user_id
		WHERE a.user_id = ?
		ORDER BY a.submitted_date DESC, a.id DESC
		LIMIT 1`, userID)
	return scanApplication(row, true)
}

// ListApplications returns applications without attachments, newest first.
func (s *Storage) ListApplications(ctx context.Context, filter persistence.ApplicationFilter) ([]persistence.Application, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.UserID != 0 {
		clauses = append(clauses, "a.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "a.status = ?")
		args = append(args, string(filter.Status))
	}

	query := `
		SELECT a.id, a.user_id, a.application_data, a.status, a.submitted_date, a.last_modified, NULL, NULL,
			u.first_name || ' ' || u.last_name, u.email
		FROM applications a JOIN users u ON u.id = a.user_id`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY a.submitted_date DESC, a.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var apps []persistence.Application
	for rows.Next() {
		app, err := scanApplication(rows, false)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanApplication(row rowScanner, withAttachments bool) (persistence.Application, error) {
	var (
		app                 persistence.Application
		data, status        string
		submitted, modified string
		resume, coverLetter []byte
	)
	err := row.Scan(&app.ID, &app.UserID, &data, &status, &submitted, &modified, &resume, &coverLetter,
		&app.ApplicantName, &app.ApplicantEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Application{}, persistence.ErrNotFound
		}
		return persistence.Application{}, mapError(err)
	}

	if err := json.Unmarshal([]byte(data), &app.Form); err != nil {
		return persistence.Application{}, fmt.Errorf("decode application %d: %w", app.ID, err)
	}
	app.Status = persistence.ApplicationStatus(status)
	app.ApplicantName = strings.TrimSpace(app.ApplicantName)
	if app.SubmittedAt, err = parseTime(submitted); err != nil {
		return persistence.Application{}, err
	}
	if app.ModifiedAt, err = parseTime(modified); err != nil {
		return persistence.Application{}, err
	}
	if withAttachments {
		app.Resume = resume
		app.CoverLetter = coverLetter
	}
	return app, nil
}
