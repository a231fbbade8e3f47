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

// CreateTest stores a screening test and its questions.
func (s *Storage) CreateTest(ctx context.Context, test persistence.ScreeningTest) (persistence.ScreeningTest, error) {
	questions, err := json.Marshal(test.Questions)
	if err != nil {
		return persistence.ScreeningTest{}, fmt.Errorf("encode questions: %w", err)
	}
	result, err := s.exec(ctx, `
		INSERT INTO screening_tests (title, description, questions, duration, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		test.Title, test.Description, string(questions), test.DurationMinutes, test.CreatedBy, formatTime(test.CreatedAt),
	)
	if err != nil {
		return persistence.ScreeningTest{}, err
	}
	if test.ID, err = result.LastInsertId(); err != nil {
		return persistence.ScreeningTest{}, err
	}
	return test, nil
}

// GetTest loads a screening test by id.
func (s *Storage) GetTest(ctx context.Context, id int64) (persistence.ScreeningTest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, questions, duration, created_by, created_at FROM screening_tests WHERE id = ?`, id)
	return scanTest(row)
}

// ListTests returns every screening test, newest first.
func (s *Storage) ListTests(ctx context.Context) ([]persistence.ScreeningTest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, questions, duration, created_by, created_at
		FROM screening_tests ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var tests []persistence.ScreeningTest
	for rows.Next() {
		test, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, test)
	}
	return tests, rows.Err()
}

// CreateAssignment assigns a test to a candidate. The pair is unique.
func (s *Storage) CreateAssignment(ctx context.Context, a persistence.TestAssignment) (persistence.TestAssignment, error) {
	responses, err := encodeResponses(a.Responses)
	if err != nil {
		return persistence.TestAssignment{}, err
	}
	result, err := s.exec(ctx, `
		INSERT INTO test_assignments (test_id, candidate_id, status, assigned_date, start_time, end_time, score, responses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.TestID, a.CandidateID, string(a.Status), formatTime(a.AssignedAt),
		nullTime(a.StartedAt), nullTime(a.CompletedAt), a.Score, responses,
	)
	if err != nil {
		return persistence.TestAssignment{}, err
	}
	if a.ID, err = result.LastInsertId(); err != nil {
		return persistence.TestAssignment{}, err
	}
	return a, nil
}

const assignmentSelect = `
	SELECT ta.id, ta.test_id, ta.candidate_id, ta.status, ta.assigned_date, ta.start_time, ta.end_time,
		ta.score, ta.responses, st.title
	FROM test_assignments ta JOIN screening_tests st ON st.id = ta.test_id`

// GetAssignment loads the assignment of testID to candidateID.
func (s *Storage) GetAssignment(ctx context.Context, testID, candidateID int64) (persistence.TestAssignment, error) {
	row := s.db.QueryRowContext(ctx, assignmentSelect+` WHERE ta.test_id = ? AND ta.candidate_id = ?`, testID, candidateID)
	return scanAssignment(row)
}

// ListAssignments returns assignments, most recently assigned first.
func (s *Storage) ListAssignments(ctx context.Context, filter persistence.AssignmentFilter) ([]persistence.TestAssignment, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.TestID != 0 {
		clauses = append(clauses, "ta.test_id = ?")
		args = append(args, filter.TestID)
	}
	if filter.CandidateID != 0 {
		clauses = append(clauses, "ta.candidate_id = ?")
		args = append(args, filter.CandidateID)
	}
	query := assignmentSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY ta.assigned_date DESC, ta.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var assignments []persistence.TestAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// UpdateAssignment persists status, timing, score and responses when the
// stored status still equals from. Returns ErrNotFound otherwise.
func (s *Storage) UpdateAssignment(ctx context.Context, a persistence.TestAssignment, from persistence.AssignmentStatus) error {
	responses, err := encodeResponses(a.Responses)
	if err != nil {
		return err
	}
	result, err := s.exec(ctx, `
		UPDATE test_assignments SET status = ?, start_time = ?, end_time = ?, score = ?, responses = ?
		WHERE test_id = ? AND candidate_id = ? AND status = ?`,
		string(a.Status), nullTime(a.StartedAt), nullTime(a.CompletedAt), a.Score, responses, a.TestID, a.CandidateID, string(from),
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func encodeResponses(responses []string) (sql.NullString, error) {
	if responses == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(responses)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode responses: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func scanTest(row rowScanner) (persistence.ScreeningTest, error) {
	var (
		test      persistence.ScreeningTest
		questions string
		created   string
	)
	err := row.Scan(&test.ID, &test.Title, &test.Description, &questions, &test.DurationMinutes, &test.CreatedBy, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ScreeningTest{}, persistence.ErrNotFound
		}
		return persistence.ScreeningTest{}, mapError(err)
	}
	if err := json.Unmarshal([]byte(questions), &test.Questions); err != nil {
		return persistence.ScreeningTest{}, fmt.Errorf("decode questions of test %d: %w", test.ID, err)
	}
	if test.CreatedAt, err = parseTime(created); err != nil {
		return persistence.ScreeningTest{}, err
	}
	return test, nil
}

func scanAssignment(row rowScanner) (persistence.TestAssignment, error) {
	var (
		a                 persistence.TestAssignment
		status, assigned  string
		started, finished sql.NullString
		score             sql.NullFloat64
		responses         sql.NullString
	)
	err := row.Scan(&a.ID, &a.TestID, &a.CandidateID, &status, &assigned, &started, &finished, &score, &responses, &a.TestTitle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.TestAssignment{}, persistence.ErrNotFound
		}
		return persistence.TestAssignment{}, mapError(err)
	}
	a.Status = persistence.AssignmentStatus(status)
	if a.AssignedAt, err = parseTime(assigned); err != nil {
		return persistence.TestAssignment{}, err
	}
	if a.StartedAt, err = parseNullTime(started); err != nil {
		return persistence.TestAssignment{}, err
	}
	if a.CompletedAt, err = parseNullTime(finished); err != nil {
		return persistence.TestAssignment{}, err
	}
	if score.Valid {
		value := score.Float64
		a.Score = &value
	}
	if responses.Valid && responses.String != "" {
		if err := json.Unmarshal([]byte(responses.String), &a.Responses); err != nil {
			return persistence.TestAssignment{}, fmt.Errorf("decode responses: %w", err)
		}
	}
	return a, nil
}
