package sqlite

import (
	"context"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

// Statistics computes the administrator overview aggregates.
func (s *Storage) Statistics(ctx context.Context, loginsSince time.Time) (persistence.Statistics, error) {
	var stats persistence.Statistics

	scalars := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM users WHERE role = 'candidate'`, &stats.TotalCandidates},
		{`SELECT COUNT(*) FROM applications WHERE status IN ('under_review', 'interview_scheduled')`, &stats.OpenApplications},
		{`SELECT COUNT(*) FROM interviews WHERE status = 'scheduled'`, &stats.ScheduledInterviews},
		{`SELECT COALESCE(SUM(filled_staff), 0) FROM positions`, &stats.FilledPositions},
		{`SELECT COALESCE(SUM(required_staff), 0) FROM positions`, &stats.RequiredPositions},
		{`SELECT COUNT(*) FROM messages`, &stats.TotalMessages},
		{`SELECT COUNT(*) FROM messages WHERE read = 0`, &stats.UnreadMessages},
		{`SELECT COUNT(*) FROM documents`, &stats.TotalDocuments},
		{`SELECT COUNT(*) FROM documents WHERE viewed = 0`, &stats.UnviewedDocuments},
	}
	for _, q := range scalars {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return persistence.Statistics{}, mapError(err)
		}
	}

	var err error
	if stats.ApplicationsByState, err = s.countByStatus(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status ORDER BY status`); err != nil {
		return persistence.Statistics{}, err
	}
	if stats.InterviewsByState, err = s.countByStatus(ctx, `SELECT status, COUNT(*) FROM interviews GROUP BY status ORDER BY status`); err != nil {
		return persistence.Statistics{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(last_login, 1, 10) AS day, COUNT(*)
		FROM users WHERE last_login IS NOT NULL AND last_login >= ?
		GROUP BY day ORDER BY day`, formatTime(loginsSince))
	if err != nil {
		return persistence.Statistics{}, mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var dc persistence.DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return persistence.Statistics{}, mapError(err)
		}
		stats.LoginsPerDay = append(stats.LoginsPerDay, dc)
	}
	return stats, rows.Err()
}

func (s *Storage) countByStatus(ctx context.Context, query string) ([]persistence.StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var counts []persistence.StatusCount
	for rows.Next() {
		var sc persistence.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, mapError(err)
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}
