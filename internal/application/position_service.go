package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

// PositionService maintains open roles and their staffing counts.
type PositionService struct {
	positions persistence.PositionRepository
	now       func() time.Time
	logger    *slog.Logger
}

// NewPositionService constructs a PositionService.
func NewPositionService(positions persistence.PositionRepository, now func() time.Time) *PositionService {
	return NewPositionServiceWithLogger(positions, now, nil)
}

// NewPositionServiceWithLogger constructs a PositionService with a specified logger.
func NewPositionServiceWithLogger(positions persistence.PositionRepository, now func() time.Time, logger *slog.Logger) *PositionService {
	if now == nil {
		now = time.Now
	}
	return &PositionService{positions: positions, now: now, logger: defaultLogger(logger)}
}

func (s *PositionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PositionService", operation, attrs...)
}

func (s *PositionService) ready(principal Principal) error {
	if s == nil {
		return fmt.Errorf("PositionService is nil")
	}
	if s.positions == nil {
		return fmt.Errorf("position repository not configured")
	}
	return requireAdmin(principal)
}

// Create stores a new position.
func (s *PositionService) Create(ctx context.Context, params CreatePositionParams) (position persistence.Position, err error) {
	if err = s.ready(params.Principal); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", params.Principal.UserID, "title", params.Title)
	defer func() { logOutcome(ctx, logger, err, "position creation", "position_id", position.ID) }()

	vErr := &ValidationError{}
	requireText(vErr, "title", params.Title, "title is required")
	if params.RequiredStaff < 1 {
		vErr.add("required_staff", "required staff must be at least 1")
	}
	if err = vErr.orNil(); err != nil {
		return
	}

	position, err = s.positions.CreatePosition(ctx, persistence.Position{
		Title:         strings.TrimSpace(params.Title),
		Description:   strings.TrimSpace(params.Description),
		RequiredStaff: params.RequiredStaff,
		CreatedAt:     s.now(),
	})
	err = translateStoreError(err)
	return
}

// List returns every position.
func (s *PositionService) List(ctx context.Context, principal Principal) ([]persistence.Position, error) {
	if err := s.ready(principal); err != nil {
		return nil, err
	}
	return s.positions.ListPositions(ctx)
}

// UpdateFilled overwrites the filled count. Concurrent updates are last write wins.
func (s *PositionService) UpdateFilled(ctx context.Context, principal Principal, id int64, filled int) (position persistence.Position, err error) {
	if err = s.ready(principal); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateFilled", "principal_id", principal.UserID, "position_id", id, "filled", filled)
	defer func() { logOutcome(ctx, logger, err, "position update") }()

	if filled < 0 {
		err = validationFailure("filled_staff", "filled staff cannot be negative")
		return
	}
	if position, err = s.positions.GetPosition(ctx, id); err != nil {
		err = translateStoreError(err)
		return
	}
	position.FilledStaff = filled
	err = translateStoreError(s.positions.UpdatePosition(ctx, position))
	return
}
