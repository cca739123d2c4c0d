package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

type workedShiftReader interface {
	ListWorkedShifts(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string, start, end time.Time) ([]models.WorkedShift, error)
}

// WeeklyStatsConfig tunes the weekly statistics cache.
type WeeklyStatsConfig struct {
	TTL     time.Duration
	Timeout time.Duration
}

// WeeklyStatsService memoizes per-employee weekly aggregates. Persisted
// assignments stay the source of truth: entries are recomputed on miss and
// dropped whenever a commit touches the employee's week.
type WeeklyStatsService struct {
	repo    workedShiftReader
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     WeeklyStatsConfig
}

// NewWeeklyStatsService constructs the cache front for weekly statistics.
func NewWeeklyStatsService(repo workedShiftReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg WeeklyStatsConfig) *WeeklyStatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &WeeklyStatsService{repo: repo, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

func weeklyStatsKey(employeeID string, weekStart time.Time) string {
	return fmt.Sprintf("weekly_stats:%s:%s", employeeID, weekStart.Format(models.DateLayout))
}

// Get returns the stats for the employee's ISO week containing date.
func (s *WeeklyStatsService) Get(ctx context.Context, employeeID string, date time.Time) (models.WeeklyStats, error) {
	items, err := s.GetMany(ctx, []string{employeeID}, []time.Time{date})
	if err != nil {
		return models.WeeklyStats{}, err
	}
	return items[0], nil
}

// GetMany returns stats for every employee and every ISO week touched by dates.
// Cache misses are recomputed with a single storage read.
func (s *WeeklyStatsService) GetMany(ctx context.Context, employeeIDs []string, dates []time.Time) ([]models.WeeklyStats, error) {
	weeks := uniqueWeekStarts(dates)
	if len(employeeIDs) == 0 || len(weeks) == 0 {
		return nil, nil
	}

	type cell struct {
		employeeID string
		weekStart  time.Time
	}
	var (
		keys  = make([]string, 0, len(employeeIDs)*len(weeks))
		cells = make([]cell, 0, cap(keys))
	)
	for _, id := range employeeIDs {
		for _, week := range weeks {
			keys = append(keys, weeklyStatsKey(id, week))
			cells = append(cells, cell{employeeID: id, weekStart: week})
		}
	}

	out := make([]models.WeeklyStats, 0, len(keys))
	hits, err := s.cache.GetMany(ctx, keys, func(i int, raw []byte) error {
		var cached models.WeeklyStats
		if err := json.Unmarshal(raw, &cached); err != nil {
			return err
		}
		out = append(out, cached)
		return nil
	})
	if err != nil {
		s.logger.Warn("weekly stats cache unavailable, recomputing", zap.Error(err))
	}
	var misses []cell
	for i, hit := range hits {
		if !hit {
			misses = append(misses, cells[i])
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	missIDs := make([]string, 0, len(misses))
	seen := make(map[string]struct{}, len(misses))
	for _, m := range misses {
		if _, ok := seen[m.employeeID]; !ok {
			seen[m.employeeID] = struct{}{}
			missIDs = append(missIDs, m.employeeID)
		}
	}
	from := weeks[0].AddDate(0, 0, -models.ConsecutiveLookbackDays)
	to := weeks[len(weeks)-1].AddDate(0, 0, 6)

	readCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	start := time.Now()
	worked, err := s.repo.ListWorkedShifts(readCtx, nil, missIDs, from, to)
	s.metrics.ObserveDBQuery("weekly_stats_recompute", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("recompute weekly stats: %w", err)
	}

	byEmployee := make(map[string][]models.WorkedShift, len(missIDs))
	for _, w := range worked {
		byEmployee[w.EmployeeID] = append(byEmployee[w.EmployeeID], w)
	}
	fresh := make(map[string]interface{}, len(misses))
	for _, m := range misses {
		stats := computeWeeklyStats(m.employeeID, m.weekStart, byEmployee[m.employeeID])
		fresh[weeklyStatsKey(m.employeeID, m.weekStart)] = stats
		out = append(out, stats)
	}
	if err := s.cache.SetMany(ctx, fresh, s.cfg.TTL); err != nil {
		s.logger.Warn("weekly stats cache write failed", zap.Int("entries", len(fresh)), zap.Error(err))
	}
	return out, nil
}

// Invalidate drops every cached week whose lookback window contains date.
func (s *WeeklyStatsService) Invalidate(ctx context.Context, employeeID string, date time.Time) error {
	first := models.ISOWeekStart(date)
	last := models.ISOWeekStart(date.AddDate(0, 0, models.ConsecutiveLookbackDays))
	keys := make([]string, 0, 6)
	for week := first; !week.After(last); week = week.AddDate(0, 0, 7) {
		keys = append(keys, weeklyStatsKey(employeeID, week))
	}
	return s.cache.Delete(ctx, keys...)
}

func computeWeeklyStats(employeeID string, weekStart time.Time, worked []models.WorkedShift) models.WeeklyStats {
	weekEnd := weekStart.AddDate(0, 0, 6)
	windowStart := weekStart.AddDate(0, 0, -models.ConsecutiveLookbackDays)
	stats := models.WeeklyStats{
		EmployeeID:  employeeID,
		WeekStart:   weekStart.Format(models.DateLayout),
		WorkedDates: []string{},
		ComputedAt:  time.Now().UTC(),
	}
	dates := make(map[string]struct{})
	for _, w := range worked {
		day := civilDate(w.ShiftDate)
		if day.Before(windowStart) || day.After(weekEnd) {
			continue
		}
		dates[day.Format(models.DateLayout)] = struct{}{}
		if !day.Before(weekStart) {
			stats.ShiftsInWeek++
			stats.HoursInWeek += w.Hours()
		}
	}
	for d := range dates {
		stats.WorkedDates = append(stats.WorkedDates, d)
	}
	sort.Strings(stats.WorkedDates)
	return stats
}

func uniqueWeekStarts(dates []time.Time) []time.Time {
	seen := make(map[string]struct{}, len(dates))
	weeks := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		week := models.ISOWeekStart(civilDate(d))
		key := week.Format(models.DateLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}

// civilDate strips the clock and zone so dates compare as calendar days.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
