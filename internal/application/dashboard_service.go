package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

const (
	recentActivityLimit = 10
	loginWindowDays     = 7
	maxActivityLimit    = 500
)

// DashboardService assembles the administrator overview.
type DashboardService struct {
	stats      persistence.StatisticsRepository
	activities persistence.ActivityRepository
	now        func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(stats persistence.StatisticsRepository, activities persistence.ActivityRepository, now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{stats: stats, activities: activities, now: now}
}

// Overview returns portal-wide aggregates plus the latest activity entries.
// Logins are counted per day over the last seven days including today.
func (s *DashboardService) Overview(ctx context.Context, principal Principal) (Overview, error) {
	if s == nil || s.stats == nil || s.activities == nil {
		return Overview{}, fmt.Errorf("dashboard repositories not configured")
	}
	if err := requireAdmin(principal); err != nil {
		return Overview{}, err
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stats, err := s.stats.Statistics(ctx, today.AddDate(0, 0, -(loginWindowDays-1)))
	if err != nil {
		return Overview{}, err
	}
	recent, err := s.activities.ListActivities(ctx, 0, recentActivityLimit)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Statistics: stats, RecentActivities: recent, GeneratedAt: now}, nil
}

// ActivityLog returns audit entries, optionally for a single user.
func (s *DashboardService) ActivityLog(ctx context.Context, principal Principal, userID int64, limit int) ([]persistence.Activity, error) {
	if s == nil || s.activities == nil {
		return nil, fmt.Errorf("activity repository not configured")
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return s.activities.ListActivities(ctx, userID, limit)
}

// SettingsService reads and writes key/value portal settings.
type SettingsService struct {
	settings persistence.SettingsRepository
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(settings persistence.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the value stored under key.
func (s *SettingsService) Get(ctx context.Context, principal Principal, key string) (string, error) {
	if err := requireAdmin(principal); err != nil {
		return "", err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", validationFailure("key", "key is required")
	}
	value, err := s.settings.GetSetting(ctx, key)
	return value, translateStoreError(err)
}

// Put stores value under key.
func (s *SettingsService) Put(ctx context.Context, principal Principal, key, value string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return validationFailure("key", "key is required")
	}
	return s.settings.PutSetting(ctx, key, value)
}
