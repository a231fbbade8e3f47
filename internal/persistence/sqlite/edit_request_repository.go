package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/recruitment-portal/internal/persistence"
)

const editRequestColumns = `id, user_id, reason, requested_changes, status, response, request_date, response_date`

// CreateEditRequest stores a new edit request.
func (s *Storage) CreateEditRequest(ctx context.Context, req persistence.EditRequest) (persistence.EditRequest, error) {
	result, err := s.exec(ctx, `
		INSERT INTO edit_requests (user_id, reason, requested_changes, status, response, request_date, response_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.UserID, req.Reason, req.RequestedChanges, string(req.Status), req.Response,
		formatTime(req.CreatedAt), nullTime(req.RespondedAt),
	)
	if err != nil {
		return persistence.EditRequest{}, err
	}
	if req.ID, err = result.LastInsertId(); err != nil {
		return persistence.EditRequest{}, err
	}
	return req, nil
}

// GetEditRequest loads an edit request by id.
func (s *Storage) GetEditRequest(ctx context.Context, id int64) (persistence.EditRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+editRequestColumns+` FROM edit_requests WHERE id = ?`, id)
	return scanEditRequest(row)
}

// ListEditRequests returns edit requests, newest first.
func (s *Storage) ListEditRequests(ctx context.Context, filter persistence.EditRequestFilter) ([]persistence.EditRequest, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.UserID != 0 {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	query := `SELECT ` + editRequestColumns + ` FROM edit_requests`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY request_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var requests []persistence.EditRequest
	for rows.Next() {
		req, err := scanEditRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateEditRequest persists a resolution.
func (s *Storage) UpdateEditRequest(ctx context.Context, req persistence.EditRequest) error {
	result, err := s.exec(ctx, `
		UPDATE edit_requests SET status = ?, response = ?, response_date = ? WHERE id = ?`,
		string(req.Status), req.Response, nullTime(req.RespondedAt), req.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanEditRequest(row rowScanner) (persistence.EditRequest, error) {
	var (
		req       persistence.EditRequest
		status    string
		created   string
		responded sql.NullString
	)
	err := row.Scan(&req.ID, &req.UserID, &req.Reason, &req.RequestedChanges, &status, &req.Response, &created, &responded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.EditRequest{}, persistence.ErrNotFound
		}
		return persistence.EditRequest{}, mapError(err)
	}
	req.Status = persistence.EditRequestStatus(status)
	if req.CreatedAt, err = parseTime(created); err != nil {
		return persistence.EditRequest{}, err
	}
	if req.RespondedAt, err = parseNullTime(responded); err != nil {
		return persistence.EditRequest{}, err
	}
	return req, nil
}
